package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/orchestrator"
	"github.com/dharmasatrya/tboflights/internal/tbo"
)

// Entry is a successful normalized search. TraceID is kept with the items because
// later fare-quote calls must reference the search session that produced them.
type Entry struct {
	TraceID string             `json:"traceId"`
	Items   []models.Itinerary `json:"items"`
}

type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*Entry, bool)
	Set(ctx context.Context, req models.SearchRequest, entry Entry) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// NewRedisCache wraps an existing client; Close releases it.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultRedisConfig().TTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*Entry, bool) {
	key := generateKey(req)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	return &entry, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, entry Entry) error {
	key := generateKey(req)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) (*Entry, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, entry Entry) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// generateKey derives the key from the provider search identity rather than the
// raw request, so requests that produce the same upstream payload share an entry
// (PE and W both map to cabin 2; a one-way ignores any return date). The route
// stays readable in the key for redis-cli inspection.
func generateKey(req models.SearchRequest) string {
	payload := orchestrator.BuildSearchRequest(req, "", "")
	identity := struct {
		JourneyType string
		Adults      int
		Children    int
		Infants     int
		Segments    []tbo.SearchSegment
	}{
		JourneyType: payload.JourneyType,
		Adults:      payload.AdultCount,
		Children:    payload.ChildCount,
		Infants:     payload.InfantCount,
		Segments:    payload.Segments,
	}

	data, _ := json.Marshal(identity)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("tbo:search:%s-%s:%s", req.Origin, req.Destination, hex.EncodeToString(hash[:]))
}
