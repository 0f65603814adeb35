package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

const redisKeyPrefix = "notes:doc:"

// Redis stores records as JSON strings under fingerprint-derived keys. The
// TTL policy maps directly onto key expiry; zero means no expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig carries connection parameters for the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects a client and verifies the server responds.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: cfg.TTL, logger: logger}, nil
}

// Get loads the record or reports ErrMiss; decode failures degrade to a miss.
func (c *Redis) Get(ctx context.Context, topic, source string) (scrape.Document, error) {
	data, err := c.client.Get(ctx, redisKey(topic, source)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return scrape.Document{}, ErrMiss
		}
		c.logger.Warn("redis cache read failed", zap.String("topic", topic), zap.Error(err))
		return scrape.Document{}, fmt.Errorf("%w: %v", ErrMiss, err)
	}
	var doc scrape.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		c.logger.Warn("redis cache record corrupt", zap.String("topic", topic), zap.Error(err))
		return scrape.Document{}, fmt.Errorf("%w: decode record: %v", ErrMiss, err)
	}
	return doc, nil
}

// Put stores the record with the configured expiry.
func (c *Redis) Put(ctx context.Context, topic, source string, doc scrape.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(topic, source), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Redis) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

func redisKey(topic, source string) string {
	return redisKeyPrefix + Fingerprint(topic, source)
}
