package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/normalizer"
	"github.com/dharmasatrya/tboflights/internal/tbo"
	"github.com/dharmasatrya/tboflights/internal/timeparse"
	"github.com/dharmasatrya/tboflights/internal/tokencache"
)

const (
	CodeTimeout      = "TIMEOUT"
	CodeAuthFailed   = "AUTH_FAILED"
	CodeSearchFailed = "SEARCH_FAILED"
)

const authUnavailableMessage = "Flight search is temporarily unavailable"

// Provider is the upstream booking API as seen by the orchestrator.
type Provider interface {
	EndUserIP() string
	Authenticate(ctx context.Context) (string, error)
	Search(ctx context.Context, req tbo.SearchRequest) (*tbo.SearchEnvelope, error)
}

type Config struct {
	TokenTTL time.Duration
}

type Orchestrator struct {
	provider   Provider
	tokens     tokencache.Store
	normalizer *normalizer.Normalizer
	config     Config
}

type Result struct {
	Success          bool
	Results          []models.Itinerary
	TotalResults     int
	TraceID          string
	ProviderError    *models.ProviderError
	ValidationErrors models.ValidationErrors
	SearchCriteria   models.SearchRequest
	Attempts         int
}

func New(provider Provider, tokens tokencache.Store, norm *normalizer.Normalizer, config Config) *Orchestrator {
	if tokens == nil {
		tokens = tokencache.NewMemory(nil)
	}
	if norm == nil {
		norm = normalizer.New(nil)
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = tokencache.DefaultTTL
	}
	return &Orchestrator{
		provider:   provider,
		tokens:     tokens,
		normalizer: norm,
		config:     config,
	}
}

// Search validates req, calls the provider (at most twice, sequentially) and
// normalizes the response. Validation, auth, timeout and provider business
// failures come back as a Result with Success=false; the returned error is
// reserved for caller cancellation and unexpected transport failures.
func (o *Orchestrator) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	req.Normalize()
	result := &Result{
		Results:        []models.Itinerary{},
		SearchCriteria: req,
	}

	if err := req.Validate(); err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			result.ValidationErrors = verrs
		} else {
			result.ValidationErrors = models.ValidationErrors{err.Error()}
		}
		return result, nil
	}

	token, err := o.token(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, tbo.ErrTimeout) {
			result.ProviderError = timeoutError()
			return result, nil
		}
		slog.ErrorContext(ctx, "provider authentication failed", "error", err)
		result.ProviderError = &models.ProviderError{Code: CodeAuthFailed, Message: authUnavailableMessage}
		return result, nil
	}

	payload := BuildSearchRequest(req, token, o.provider.EndUserIP())
	env, attempts, err := o.searchWithRetry(ctx, payload)
	result.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, tbo.ErrTimeout) {
			slog.WarnContext(ctx, "provider search timed out", "attempts", attempts)
			result.ProviderError = timeoutError()
			return result, nil
		}
		return nil, fmt.Errorf("search flights: %w", err)
	}

	if code := int(env.Response.Error.ErrorCode); code != 0 {
		result.TraceID = string(env.Response.TraceId)
		result.ProviderError = &models.ProviderError{
			Code:    strconv.Itoa(code),
			Message: env.Response.Error.ErrorMessage,
		}
		return result, nil
	}

	normalized, err := o.normalizer.Normalize(env)
	if err != nil {
		var failed *normalizer.SearchFailedError
		if errors.As(err, &failed) {
			result.ProviderError = &models.ProviderError{Code: CodeSearchFailed, Message: failed.Message}
			return result, nil
		}
		return nil, fmt.Errorf("normalize search response: %w", err)
	}

	result.Success = true
	result.Results = normalized.Items
	result.TotalResults = len(normalized.Items)
	result.TraceID = normalized.Meta.TraceID

	slog.InfoContext(ctx, "flight search completed",
		"origin", req.Origin,
		"destination", req.Destination,
		"trace_id", result.TraceID,
		"results", result.TotalResults,
		"attempts", attempts,
	)

	return result, nil
}

// searchWithRetry retries exactly once, with Sources: [], when a first attempt
// sent with Sources: null comes back with no results. Provider business errors
// are never retried.
func (o *Orchestrator) searchWithRetry(ctx context.Context, payload tbo.SearchRequest) (*tbo.SearchEnvelope, int, error) {
	for attempt := 0; ; attempt++ {
		env, err := o.provider.Search(ctx, payload)
		if err != nil {
			return nil, attempt + 1, err
		}

		if env.Response.Error.ErrorCode != 0 {
			return env, attempt + 1, nil
		}

		count := len(normalizer.FlattenResults(env.Response.Results))
		slog.DebugContext(ctx, "provider search attempt",
			"attempt", attempt+1,
			"sources", sourcesMode(payload.Sources),
			"results", count,
		)

		empty := count == 0
		if empty && attempt == 0 && payload.Sources == nil {
			slog.InfoContext(ctx, "empty search results, retrying with empty sources",
				"journey_type", payload.JourneyType,
				"trace_id", string(env.Response.TraceId),
			)
			payload.Sources = tbo.EmptySources()
			continue
		}

		return env, attempt + 1, nil
	}
}

func sourcesMode(sources *[]string) string {
	if sources == nil {
		return "null"
	}
	return "empty"
}

// token is a read-through over the token store. Concurrent misses may each
// authenticate; the last write wins.
func (o *Orchestrator) token(ctx context.Context) (string, error) {
	token, ok, err := o.tokens.Get(ctx, tokencache.Key)
	if err != nil {
		slog.WarnContext(ctx, "token cache read failed", "error", err)
	} else if ok {
		return token, nil
	}

	token, err = o.provider.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	if err := o.tokens.Set(ctx, tokencache.Key, token, o.config.TokenTTL); err != nil {
		slog.WarnContext(ctx, "token cache write failed", "error", err)
	}
	return token, nil
}

func timeoutError() *models.ProviderError {
	return &models.ProviderError{Code: CodeTimeout, Message: "The flight provider took too long to respond. Please try again."}
}

// CabinCode maps UI cabin codes to the provider's numeric FlightCabinClass.
// Unknown input is treated as Economy.
func CabinCode(cabin string) string {
	switch strings.ToUpper(strings.TrimSpace(cabin)) {
	case "PE", "W":
		return "2"
	case "B":
		return "3"
	case "F":
		return "4"
	default:
		return "1"
	}
}

func BuildSearchRequest(req models.SearchRequest, token, endUserIP string) tbo.SearchRequest {
	cabin := CabinCode(req.CabinClass)
	outbound := preferredTime(req.DepartDate)

	payload := tbo.SearchRequest{
		EndUserIp:   endUserIP,
		TokenId:     token,
		AdultCount:  req.Adults,
		ChildCount:  req.Children,
		InfantCount: req.Infants,
		JourneyType: tbo.JourneyOneWay,
		Segments: []tbo.SearchSegment{{
			Origin:                 req.Origin,
			Destination:            req.Destination,
			FlightCabinClass:       cabin,
			PreferredDepartureTime: outbound,
			PreferredArrivalTime:   outbound,
		}},
	}

	if req.IsRoundTrip() {
		inbound := preferredTime(req.ReturnDate)
		payload.JourneyType = tbo.JourneyRoundTrip
		payload.Segments = append(payload.Segments, tbo.SearchSegment{
			Origin:                 req.Destination,
			Destination:            req.Origin,
			FlightCabinClass:       cabin,
			PreferredDepartureTime: inbound,
			PreferredArrivalTime:   inbound,
		})
	}

	return payload
}

func preferredTime(date string) string {
	t, err := timeparse.Parse(date)
	if err != nil {
		return date
	}
	return t.Format("2006-01-02") + "T00:00:00"
}
