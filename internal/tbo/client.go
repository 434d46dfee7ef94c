package tbo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dharmasatrya/tboflights/internal/ratelimit"
)

var (
	// ErrTimeout is returned when a single upstream call exceeds its own budget.
	ErrTimeout = errors.New("tbo: upstream call timed out")
	ErrAuth    = errors.New("tbo: authentication failed")
)

type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tbo %s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("tbo authenticate: %s (code %d)", e.Message, e.Code)
}

func (e *AuthError) Unwrap() error {
	return ErrAuth
}

type Config struct {
	AuthURL       string
	SearchURL     string
	ClientID      string
	UserName      string
	Password      string
	EndUserIP     string
	AuthTimeout   time.Duration
	SearchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		AuthURL:       "http://api.tektravels.com/SharedServices/SharedData.svc/rest/Authenticate",
		SearchURL:     "http://api.tektravels.com/BookingEngineService_Air/AirService.svc/rest/Search",
		EndUserIP:     "127.0.0.1",
		AuthTimeout:   15 * time.Second,
		SearchTimeout: 30 * time.Second,
	}
}

type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *ratelimit.EndpointLimiter
}

// NewClient builds a client. Timeouts are applied per call through the request
// context, so httpClient should not carry its own shorter Timeout.
func NewClient(config Config, httpClient *http.Client, limiter *ratelimit.EndpointLimiter) *Client {
	defaults := DefaultConfig()
	if config.AuthTimeout <= 0 {
		config.AuthTimeout = defaults.AuthTimeout
	}
	if config.SearchTimeout <= 0 {
		config.SearchTimeout = defaults.SearchTimeout
	}
	if config.EndUserIP == "" {
		config.EndUserIP = defaults.EndUserIP
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

func (c *Client) EndUserIP() string {
	return c.config.EndUserIP
}

func (c *Client) Authenticate(ctx context.Context) (string, error) {
	req := AuthRequest{
		ClientId:  c.config.ClientID,
		UserName:  c.config.UserName,
		Password:  c.config.Password,
		EndUserIp: c.config.EndUserIP,
	}

	var resp AuthResponse
	if err := c.post(ctx, ratelimit.EndpointAuthenticate, c.config.AuthURL, c.config.AuthTimeout, req, &resp); err != nil {
		return "", err
	}

	if resp.Error.ErrorCode != 0 || resp.TokenId == "" {
		msg := resp.Error.ErrorMessage
		if msg == "" {
			msg = "no token issued"
		}
		return "", &AuthError{Code: int(resp.Error.ErrorCode), Message: msg}
	}

	return resp.TokenId, nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchEnvelope, error) {
	var body SearchEnvelope
	if err := c.post(ctx, ratelimit.EndpointSearch, c.config.SearchURL, c.config.SearchTimeout, req, &body); err != nil {
		return nil, err
	}
	body.Success = true
	return &body, nil
}

func (c *Client) post(ctx context.Context, endpoint, url string, timeout time.Duration, in, out any) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("tbo %s: encode request: %w", endpoint, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("tbo %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify(ctx, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("tbo %s: decode response: %w", endpoint, err)
	}
	return nil
}

// classify separates the caller giving up from the call exceeding its own budget.
func classify(parent context.Context, endpoint string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("tbo %s: %w", endpoint, ErrTimeout)
	}
	return fmt.Errorf("tbo %s: %w", endpoint, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
