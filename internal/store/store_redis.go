package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"unimart/pkg/platform/sentinel"
)

var (
	redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unimart_session_store_redis_duration_ms",
		Help:    "Latency of redis session store operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"op"})
)

const (
	defaultRedisKeyPrefix = "unimart:session:"
	sessionHashKey        = "state"
	scratchHashKey        = "scratch"
)

// RedisStore is a Redis-backed session store for shared deployments (kiosk
// terminals, the gateway running more than one instance). Session and scratch
// data live in two hashes under a common prefix.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces all keys, e.g. per terminal.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// WithTTL expires the session hash after d; zero keeps it until Clear.
func WithTTL(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultRedisKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) sessionKey() string { return s.keyPrefix + sessionHashKey }
func (s *RedisStore) scratchKey() string { return s.keyPrefix + scratchHashKey }

func observe(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (s *RedisStore) Load(ctx context.Context) (Entry, error) {
	start := time.Now()
	defer func() { observe("load", start) }()

	kv, err := s.client.HGetAll(ctx, s.sessionKey()).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("load session hash: %w", err)
	}
	return loadResult(ctx, kv, s.Clear)
}

func (s *RedisStore) SetOptimistic(ctx context.Context, entry Entry) error {
	start := time.Now()
	defer func() { observe("set", start) }()

	kv, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.sessionKey(), kv)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.sessionKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist session hash: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	start := time.Now()
	defer func() { observe("clear", start) }()

	if err := s.client.Del(ctx, s.sessionKey(), s.scratchKey()).Err(); err != nil {
		return fmt.Errorf("clear session keys: %w", err)
	}
	return nil
}

func (s *RedisStore) SetScratch(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.scratchKey(), key, value).Err(); err != nil {
		return fmt.Errorf("persist scratch key: %w", err)
	}
	return nil
}

func (s *RedisStore) GetScratch(ctx context.Context, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.scratchKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("scratch key %q: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read scratch key: %w", err)
	}
	return v, nil
}
