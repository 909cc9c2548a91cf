package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrGenerationRedisUnavailable = errors.New("generation redis unavailable")
)

// GenerationStore keeps one monotonic submission counter per flow id so
// replicas handling the same flow agree on which submission is newest.
type GenerationStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewGenerationStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *GenerationStore {
	if prefix == "" {
		prefix = "gf:gen"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GenerationStore{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *GenerationStore) key(flowID string) string {
	return s.prefix + ":" + flowID
}

// Next increments and returns the counter of flowID, refreshing its TTL.
func (s *GenerationStore) Next(ctx context.Context, flowID string) (uint64, error) {
	key := s.key(flowID)

	var incr *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGenerationRedisUnavailable, err)
	}
	return uint64(incr.Val()), nil
}

// Current returns the counter of flowID, or 0 when none was issued.
func (s *GenerationStore) Current(ctx context.Context, flowID string) (uint64, error) {
	v, err := s.redis.Get(ctx, s.key(flowID)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGenerationRedisUnavailable, err)
	}
	return v, nil
}
