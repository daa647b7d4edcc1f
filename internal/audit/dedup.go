package audit

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/circuitbreaker"
	"chatline/pkg/metrics"
	"chatline/pkg/models"
)

// DedupStore claims an audit event hash. SetNX returns false when another
// delivery of the same event already claimed it.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	success, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return success, nil
}

// CircuitBreakerStore shields the pipeline from a struggling Redis. With the
// breaker disabled it is a passthrough.
type CircuitBreakerStore struct {
	store DedupStore
	cb    *circuitbreaker.Wrapper
}

func NewCircuitBreakerStore(store DedupStore, cfg config.CircuitBreakerConfig) *CircuitBreakerStore {
	if !cfg.Enabled {
		return &CircuitBreakerStore{store: store}
	}

	cbConfig := circuitbreaker.DefaultConfig("redis-audit-dedup")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(cfg.MinRequests) {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerStore{
		store: store,
		cb:    circuitbreaker.NewWrapper(cbConfig),
	}
}

func (s *CircuitBreakerStore) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if s.cb == nil {
		return s.store.SetNX(ctx, key, value, ttl)
	}

	result, err := s.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return s.store.SetNX(ctx, key, value, ttl)
	})

	s.cb.RecordRequest(err == nil)

	if err != nil {
		if s.cb.IsOpen() {
			return false, fmt.Errorf("circuit breaker is open for redis-audit-dedup: %w", err)
		}
		return false, err
	}

	success, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("store returned invalid result type")
	}

	return success, nil
}

// Deduplicator decides whether an audit event was already recorded. The
// broker redelivers on failure, so the same event can arrive more than once;
// the hash of its identifying fields is claimed in Redis before writing.
type Deduplicator struct {
	store  DedupStore
	cfg    config.IdempotencyConfig
	logger logger.Logger
}

func NewDeduplicator(store DedupStore, cfg config.IdempotencyConfig, log logger.Logger) *Deduplicator {
	if cfg.TTLSeconds == 0 {
		cfg.TTLSeconds = constants.DefaultTTLSeconds
	}
	return &Deduplicator{
		store:  store,
		cfg:    cfg,
		logger: log,
	}
}

// ShouldRecord reports whether the event is new. On Redis failure it falls
// back per configuration: allow records a possible duplicate, deny surfaces
// the error so the delivery is retried.
func (d *Deduplicator) ShouldRecord(ctx context.Context, event models.AuditEvent) (bool, error) {
	key := constants.CacheKeyPrefixAudit + d.hash(event)

	fresh, err := d.store.SetNX(ctx, key, time.Now().Unix(), time.Duration(d.cfg.TTLSeconds)*time.Second)
	if err != nil {
		if d.cfg.OnRedisError == constants.FallbackAllow {
			metrics.FallbackUsageTotal.WithLabelValues("audit", "allow_on_error", "redis_error").Inc()
			d.logger.WarnwCtx(ctx, "Redis error during audit dedup check, recording anyway (fallback: allow)",
				"error", err,
			)
			return true, nil
		}
		metrics.FallbackUsageTotal.WithLabelValues("audit", "deny_on_error", "redis_error").Inc()
		return false, fmt.Errorf("redis error during audit dedup check: %w", err)
	}

	return fresh, nil
}

func (d *Deduplicator) hash(event models.AuditEvent) string {
	input := fmt.Sprintf("%s|%s|%d|%d",
		event.Action,
		event.Entity,
		event.Content.ID,
		event.Content.UpdatedAt.UnixNano(),
	)

	switch d.cfg.HashAlgorithm {
	case "sha256":
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:])
	default:
		sum := md5.Sum([]byte(input))
		return hex.EncodeToString(sum[:])
	}
}
