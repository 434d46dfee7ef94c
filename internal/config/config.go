package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/magiconair/properties"

	"github.com/dharmasatrya/tboflights/internal/tokencache"
)

const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

const defaultPropertiesFile = "resources/service.properties"

type Config struct {
	Port             string
	HTTPRateLimitRPS float64

	TBOAuthURL        string
	TBOSearchURL      string
	TBOClientID       string
	TBOUserName       string
	TBOPassword       string
	TBOEndUserIP      string
	TBOAuthTimeout    time.Duration
	TBOSearchTimeout  time.Duration
	TBOTokenTTL       time.Duration
	TBORateLimitRPS   float64
	TBORateLimitBurst int

	// Authenticate has its own budget; tokens are cached, so it is called rarely.
	TBOAuthRateLimitRPS   float64
	TBOAuthRateLimitBurst int

	TokenStore string

	CacheEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// Source resolves keys from the environment first, then an optional properties
// file. Property keys are the env names lower-cased with '_' replaced by '.'.
type Source struct {
	props *properties.Properties
}

// Load reads a local .env (if any), the properties file named by
// FLIGHTSEARCH_PROPERTIES (default resources/service.properties, if present)
// and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	src, err := NewSource(os.Getenv("FLIGHTSEARCH_PROPERTIES"))
	if err != nil {
		return Config{}, err
	}
	return src.Config(), nil
}

func NewSource(propertiesFile string) (*Source, error) {
	explicit := propertiesFile != ""
	if !explicit {
		propertiesFile = defaultPropertiesFile
	}

	if _, err := os.Stat(propertiesFile); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Source{}, nil
		}
		return nil, err
	}

	props, err := properties.LoadFile(propertiesFile, properties.UTF8)
	if err != nil {
		return nil, err
	}
	return &Source{props: props}, nil
}

func (s *Source) Config() Config {
	return Config{
		Port:             s.getEnv("PORT", "8080"),
		HTTPRateLimitRPS: s.getEnvFloat("HTTP_RATE_LIMIT_RPS", 20),

		TBOAuthURL:        s.getEnv("TBO_AUTH_URL", "http://api.tektravels.com/SharedServices/SharedData.svc/rest/Authenticate"),
		TBOSearchURL:      s.getEnv("TBO_SEARCH_URL", "http://api.tektravels.com/BookingEngineService_Air/AirService.svc/rest/Search"),
		TBOClientID:       s.getEnv("TBO_CLIENT_ID", ""),
		TBOUserName:       s.getEnv("TBO_USERNAME", ""),
		TBOPassword:       s.getEnv("TBO_PASSWORD", ""),
		TBOEndUserIP:      s.getEnv("TBO_END_USER_IP", "127.0.0.1"),
		TBOAuthTimeout:    s.getEnvDuration("TBO_AUTH_TIMEOUT", 15*time.Second),
		TBOSearchTimeout:  s.getEnvDuration("TBO_SEARCH_TIMEOUT", 30*time.Second),
		TBOTokenTTL:       s.getEnvDuration("TBO_TOKEN_TTL", tokencache.DefaultTTL),
		TBORateLimitRPS:   s.getEnvFloat("TBO_RATE_LIMIT_RPS", 5),
		TBORateLimitBurst: s.getEnvInt("TBO_RATE_LIMIT_BURST", 10),

		TBOAuthRateLimitRPS:   s.getEnvFloat("TBO_AUTH_RATE_LIMIT_RPS", 1),
		TBOAuthRateLimitBurst: s.getEnvInt("TBO_AUTH_RATE_LIMIT_BURST", 2),

		TokenStore: strings.ToLower(s.getEnv("TOKEN_STORE", TokenStoreMemory)),

		CacheEnabled:  s.getEnvBool("CACHE_ENABLED", true),
		RedisHost:     s.getEnv("REDIS_HOST", "localhost"),
		RedisPort:     s.getEnv("REDIS_PORT", "6379"),
		RedisPassword: s.getEnv("REDIS_PASSWORD", ""),
		RedisDB:       s.getEnvInt("REDIS_DB", 0),
		RedisTTL:      s.getEnvDuration("REDIS_TTL", 5*time.Minute),
	}
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c Config) NeedsRedis() bool {
	return c.CacheEnabled || c.TokenStore == TokenStoreRedis
}

func (s *Source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if s.props == nil {
		return ""
	}
	value, _ := s.props.Get(PropertyKey(key))
	return value
}

func PropertyKey(envKey string) string {
	return strings.ReplaceAll(strings.ToLower(envKey), "_", ".")
}

func (s *Source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s *Source) getEnvBool(key string, defaultValue bool) bool {
	value := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func (s *Source) getEnvInt(key string, defaultValue int) int {
	value := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func (s *Source) getEnvFloat(key string, defaultValue float64) float64 {
	value := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func (s *Source) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
