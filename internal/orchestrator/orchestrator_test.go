package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/normalizer"
	"github.com/dharmasatrya/tboflights/internal/tbo"
	"github.com/dharmasatrya/tboflights/internal/tokencache"
)

const oneItinerary = `[{"ResultIndex":"OB1","Fare":{"BaseFare":38000,"Tax":5000,"Currency":"INR"},
	"Segments":[[{"Origin":{"Airport":{"AirportCode":"DEL"},"DepTime":"2025-11-20T06:00:00"},
	"Destination":{"Airport":{"AirportCode":"DXB"},"ArrTime":"2025-11-20T09:30:00"},
	"Airline":{"AirlineCode":"EK","FlightNumber":"512"},"Baggage":"25kg","NoOfSeatAvailable":9,"CabinClass":1}]]}]`

type mockProvider struct {
	mu sync.Mutex

	authCalls  int
	authErr    error
	token      string
	searchReqs []tbo.SearchRequest
	responses  []func(ctx context.Context) (*tbo.SearchEnvelope, error)
}

func (m *mockProvider) EndUserIP() string { return "10.1.1.1" }

func (m *mockProvider) Authenticate(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authCalls++
	if m.authErr != nil {
		return "", m.authErr
	}
	return m.token, nil
}

func (m *mockProvider) Search(ctx context.Context, req tbo.SearchRequest) (*tbo.SearchEnvelope, error) {
	m.mu.Lock()
	idx := len(m.searchReqs)
	m.searchReqs = append(m.searchReqs, req)
	m.mu.Unlock()
	if idx >= len(m.responses) {
		return results(`[]`), nil
	}
	return m.responses[idx](ctx)
}

func results(raw string) *tbo.SearchEnvelope {
	env := &tbo.SearchEnvelope{Success: true}
	env.Response.ResponseStatus = tbo.ResponseStatusSuccess
	env.Response.TraceId = "trace-9"
	env.Response.Results = json.RawMessage(raw)
	return env
}

func respond(env *tbo.SearchEnvelope, err error) func(context.Context) (*tbo.SearchEnvelope, error) {
	return func(context.Context) (*tbo.SearchEnvelope, error) { return env, err }
}

func validRequest() models.SearchRequest {
	return models.SearchRequest{
		Origin:      "del",
		Destination: " dxb",
		DepartDate:  "2025-11-20",
		Adults:      1,
		CabinClass:  "E",
		TripType:    "O",
	}
}

func newOrchestrator(p *mockProvider) *Orchestrator {
	return New(p, tokencache.NewMemory(nil), normalizer.New(nil), Config{})
}

func TestSearch_Success(t *testing.T) {
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(results(oneItinerary), nil),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.ProviderError)
	assert.Equal(t, 1, res.TotalResults)
	assert.Equal(t, "trace-9", res.TraceID)
	assert.Equal(t, 1, res.Attempts)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "OB1", res.Results[0].ResultIndex)
	assert.Equal(t, 43000.0, res.Results[0].Total)
	assert.Equal(t, "DEL", res.SearchCriteria.Origin)
	assert.Equal(t, "DXB", res.SearchCriteria.Destination)

	require.Len(t, p.searchReqs, 1)
	sent := p.searchReqs[0]
	assert.Equal(t, "tok", sent.TokenId)
	assert.Equal(t, "10.1.1.1", sent.EndUserIp)
	assert.Nil(t, sent.Sources)
}

func TestSearch_RetriesOnceWithEmptySources(t *testing.T) {
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(results(`[]`), nil),
		respond(results(oneItinerary), nil),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.TotalResults)
	assert.Equal(t, 2, res.Attempts)

	require.Len(t, p.searchReqs, 2)
	assert.Nil(t, p.searchReqs[0].Sources)
	require.NotNil(t, p.searchReqs[1].Sources)
	assert.Empty(t, *p.searchReqs[1].Sources)
}

func TestSearch_NoMoreThanOneRetry(t *testing.T) {
	missing := results(`null`)
	missing.Response.Results = nil
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(missing, nil),
		respond(results(`[]`), nil),
		respond(results(oneItinerary), nil),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.TotalResults)
	assert.NotNil(t, res.Results)
	assert.Len(t, p.searchReqs, 2)
}

func TestSearchWithRetry_ExplicitEmptySourcesNeverRetries(t *testing.T) {
	p := &mockProvider{responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(results(`[]`), nil),
		respond(results(oneItinerary), nil),
	}}
	o := newOrchestrator(p)

	_, attempts, err := o.searchWithRetry(context.Background(), tbo.SearchRequest{Sources: tbo.EmptySources()})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Len(t, p.searchReqs, 1)
}

func TestSearch_BusinessErrorNotRetried(t *testing.T) {
	env := results(`[]`)
	env.Response.ResponseStatus = 3
	env.Response.Error.ErrorCode = 25
	env.Response.Error.ErrorMessage = "No flights available for the selected date"
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(env, nil),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotNil(t, res.ProviderError)
	assert.Equal(t, "25", res.ProviderError.Code)
	assert.Equal(t, "No flights available for the selected date", res.ProviderError.Message)
	assert.Len(t, p.searchReqs, 1)
}

func TestSearch_NonSuccessStatusWithoutErrorCode(t *testing.T) {
	env := results(oneItinerary)
	env.Response.ResponseStatus = 2
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(env, nil),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, &models.ProviderError{Code: CodeSearchFailed, Message: "No valid results"}, res.ProviderError)
}

func TestSearch_TimeoutIsStructured(t *testing.T) {
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(nil, fmt.Errorf("tbo search: %w", tbo.ErrTimeout)),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotNil(t, res.ProviderError)
	assert.Equal(t, CodeTimeout, res.ProviderError.Code)
	assert.Len(t, p.searchReqs, 1)
}

func TestSearch_UnexpectedTransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		respond(nil, boom),
	}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestSearch_CancelledCallerGetsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &mockProvider{token: "tok", responses: []func(context.Context) (*tbo.SearchEnvelope, error){
		func(context.Context) (*tbo.SearchEnvelope, error) {
			cancel()
			return nil, context.Canceled
		},
	}}

	res, err := newOrchestrator(p).Search(ctx, validRequest())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, p.searchReqs, 1)
}

func TestSearch_AuthFailure(t *testing.T) {
	p := &mockProvider{authErr: &tbo.AuthError{Code: 2, Message: "Invalid credentials"}}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotNil(t, res.ProviderError)
	assert.Equal(t, CodeAuthFailed, res.ProviderError.Code)
	assert.NotContains(t, res.ProviderError.Message, "credentials")
	assert.Empty(t, p.searchReqs)
}

func TestSearch_AuthTimeout(t *testing.T) {
	p := &mockProvider{authErr: fmt.Errorf("tbo authenticate: %w", tbo.ErrTimeout)}

	res, err := newOrchestrator(p).Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, CodeTimeout, res.ProviderError.Code)
}

func TestSearch_TokenIsCachedUntilTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	p := &mockProvider{token: "tok"}
	o := New(p, tokencache.NewMemory(clock), nil, Config{TokenTTL: 540 * time.Second})

	for i := 0; i < 3; i++ {
		_, err := o.Search(context.Background(), validRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, p.authCalls)

	now = now.Add(540 * time.Second)
	_, err := o.Search(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, p.authCalls)
}

func TestSearch_ValidationShortCircuitsUpstream(t *testing.T) {
	p := &mockProvider{token: "tok"}
	req := models.SearchRequest{Origin: "DELHI", Destination: "DX", Adults: 9, Infants: 9, TripType: "R"}

	res, err := newOrchestrator(p).Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.ValidationErrors, "Origin must be a 3-letter airport code")
	assert.Contains(t, res.ValidationErrors, "Destination must be a 3-letter airport code")
	assert.Contains(t, res.ValidationErrors, "Departure date is required")
	assert.Contains(t, res.ValidationErrors, "Return date is required for round trip")
	assert.Contains(t, res.ValidationErrors, "Total passengers cannot exceed 9")
	assert.Zero(t, p.authCalls)
	assert.Empty(t, p.searchReqs)
}

func TestCabinCode(t *testing.T) {
	tests := map[string]string{
		"E": "1", "e": "1", "PE": "2", "W": "2", "B": "3", "F": "4", "": "1", "X": "1",
	}
	for in, want := range tests {
		assert.Equal(t, want, CabinCode(in), in)
	}
}

func TestBuildSearchRequest_RoundTrip(t *testing.T) {
	req := models.SearchRequest{
		Origin: "DEL", Destination: "BOM", DepartDate: "2025-11-20", ReturnDate: "2025-11-25",
		Adults: 2, Children: 1, Infants: 1, CabinClass: "B", TripType: models.TripRoundTrip,
	}

	got := BuildSearchRequest(req, "tok", "1.2.3.4")
	assert.Equal(t, tbo.SearchRequest{
		EndUserIp:   "1.2.3.4",
		TokenId:     "tok",
		AdultCount:  2,
		ChildCount:  1,
		InfantCount: 1,
		JourneyType: tbo.JourneyRoundTrip,
		Segments: []tbo.SearchSegment{
			{Origin: "DEL", Destination: "BOM", FlightCabinClass: "3", PreferredDepartureTime: "2025-11-20T00:00:00", PreferredArrivalTime: "2025-11-20T00:00:00"},
			{Origin: "BOM", Destination: "DEL", FlightCabinClass: "3", PreferredDepartureTime: "2025-11-25T00:00:00", PreferredArrivalTime: "2025-11-25T00:00:00"},
		},
	}, got)

	payload, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"Sources":null`)
	assert.Contains(t, string(payload), `"JourneyType":"2"`)
}

func TestBuildSearchRequest_OneWay(t *testing.T) {
	req := validRequest()
	req.Normalize()
	got := BuildSearchRequest(req, "tok", "1.2.3.4")
	assert.Equal(t, tbo.JourneyOneWay, got.JourneyType)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, "1", got.Segments[0].FlightCabinClass)
}
