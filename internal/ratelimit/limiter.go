package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

const (
	EndpointAuthenticate = "authenticate"
	EndpointSearch       = "search"
)

// EndpointLimiter paces calls to the upstream provider, one token bucket per endpoint.
type EndpointLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewEndpointLimiter(config Config) *EndpointLimiter {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	if config.BurstSize <= 0 {
		config.BurstSize = DefaultConfig().BurstSize
	}
	return &EndpointLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (l *EndpointLimiter) limiter(endpoint string) *rate.Limiter {
	l.mu.RLock()
	lim, exists := l.limiters[endpoint]
	l.mu.RUnlock()

	if exists {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, exists = l.limiters[endpoint]; exists {
		return lim
	}

	lim = rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize)
	l.limiters[endpoint] = lim
	return lim
}

// SetLimit overrides the default budget for one endpoint. Non-positive values
// keep the defaults.
func (l *EndpointLimiter) SetLimit(endpoint string, rps float64, burst int) {
	if rps <= 0 {
		rps = l.defaults.RequestsPerSecond
	}
	if burst <= 0 {
		burst = l.defaults.BurstSize
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[endpoint] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until endpoint may be called or ctx is done. A nil limiter never blocks.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	return l.limiter(endpoint).Wait(ctx)
}
