package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/dharmasatrya/tboflights/internal/cache"
	"github.com/dharmasatrya/tboflights/internal/config"
	"github.com/dharmasatrya/tboflights/internal/handler"
	"github.com/dharmasatrya/tboflights/internal/normalizer"
	"github.com/dharmasatrya/tboflights/internal/orchestrator"
	"github.com/dharmasatrya/tboflights/internal/ratelimit"
	"github.com/dharmasatrya/tboflights/internal/tbo"
	"github.com/dharmasatrya/tboflights/internal/tokencache"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "host", cfg.RedisHost, "port", cfg.RedisPort, "error", err)
			os.Exit(1)
		}
	}

	var flightCache cache.Cache = cache.NewNoOpCache()
	if cfg.CacheEnabled {
		flightCache = cache.NewRedisCache(redisClient, cfg.RedisTTL)
		slog.Info("redis cache enabled", "host", cfg.RedisHost, "port", cfg.RedisPort, "ttl", cfg.RedisTTL)
	} else {
		slog.Info("cache disabled")
	}

	var tokens tokencache.Store = tokencache.NewMemory(nil)
	if cfg.TokenStore == config.TokenStoreRedis {
		tokens = tokencache.NewRedis(redisClient, "")
	}
	slog.Info("token store configured", "store", cfg.TokenStore, "ttl", cfg.TBOTokenTTL)

	limiter := ratelimit.NewEndpointLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.TBORateLimitRPS,
		BurstSize:         cfg.TBORateLimitBurst,
	})
	limiter.SetLimit(ratelimit.EndpointAuthenticate, cfg.TBOAuthRateLimitRPS, cfg.TBOAuthRateLimitBurst)

	client := tbo.NewClient(tbo.Config{
		AuthURL:       cfg.TBOAuthURL,
		SearchURL:     cfg.TBOSearchURL,
		ClientID:      cfg.TBOClientID,
		UserName:      cfg.TBOUserName,
		Password:      cfg.TBOPassword,
		EndUserIP:     cfg.TBOEndUserIP,
		AuthTimeout:   cfg.TBOAuthTimeout,
		SearchTimeout: cfg.TBOSearchTimeout,
	}, nil, limiter)

	orch := orchestrator.New(client, tokens, normalizer.New(nil), orchestrator.Config{
		TokenTTL: cfg.TBOTokenTTL,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.HTTPRateLimitRPS))))

	searchHandler := handler.NewSearchHandler(orch, flightCache)

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	e.GET("/health", handler.HealthHandler)

	go func() {
		slog.Info("http server listening", "port", cfg.Port)

		if err := e.Start(":" + cfg.Port); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-sigint

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}
	// RedisCache.Close releases the shared client.
	if cfg.CacheEnabled {
		if err := flightCache.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", "Redis", "error", err)
		}
	} else if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", "Redis", "error", err)
		}
	}

	slog.Info("application gracefully shutdown")
}
