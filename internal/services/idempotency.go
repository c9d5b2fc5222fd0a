package services

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/planloop/planloop-backend/internal/platform/logger"
)

// IdempotencyService reserves caller-supplied idempotency keys so that
// bulk shift operations delivered at-least-once apply at most once.
// Redis SETNX is the fast path; the durable record is the unique
// idempotency_key column on plan_event, which the plan service checks
// inside its transaction. A nil/unavailable Redis degrades to the DB
// check alone.
type IdempotencyService interface {
	// Reserve returns false when the key was already reserved.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees a reservation after a failed apply so the caller
	// can retry with the same key.
	Release(ctx context.Context, key string) error
}

type idempotencyService struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewIdempotencyService(log *logger.Logger, rdb *goredis.Client) IdempotencyService {
	return &idempotencyService{log: log.With("service", "IdempotencyService"), rdb: rdb}
}

func (s *idempotencyService) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" || s.rdb == nil {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ok, err := s.rdb.SetNX(ctx, "idem:"+key, "1", ttl).Result()
	if err != nil {
		// Redis being down must not block mutations; the DB unique
		// index still prevents double-apply.
		s.log.Warn("idempotency reserve failed, falling through", "error", err)
		return true, nil
	}
	return ok, nil
}

func (s *idempotencyService) Release(ctx context.Context, key string) error {
	if key == "" || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, "idem:"+key).Err()
}
