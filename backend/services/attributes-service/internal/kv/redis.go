package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxComputeAttempts bounds the optimistic retry loop; a compute that loses
// the WATCH race this many times in a row gives up.
const maxComputeAttempts = 16

// ErrComputeContention is returned when a compute keeps losing to concurrent
// writers and the retry budget is exhausted.
var ErrComputeContention = errors.New("kv: compute retries exhausted")

// Redis is a Store backed by a Redis server. Redis offers no surrounding
// transaction, so the store reports itself non-transactional; compute runs
// client-side under a WATCH/MULTI optimistic loop.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Redis-backed store. A zero ttl stores entries without
// expiration.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get returns the value stored under key.
func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put stores value under key and returns the previous value via SET..GET.
func (s *Redis) Put(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	previous, err := s.client.SetArgs(ctx, key, value, redis.SetArgs{TTL: s.ttl, Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(previous), true, nil
}

// Remove deletes key via GETDEL and returns the removed value.
func (s *Redis) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	previous, err := s.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return previous, true, nil
}

// Compute applies fn to the current value of key. The key is WATCHed while fn
// runs and the write is retried from scratch when a concurrent writer touches
// the key, so fn may be evaluated several times but its result is applied
// exactly once.
func (s *Redis) Compute(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	return s.compute(ctx, key, fn, false)
}

// ComputeIfPresent behaves like Compute but leaves an absent key untouched.
func (s *Redis) ComputeIfPresent(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	return s.compute(ctx, key, fn, true)
}

func (s *Redis) compute(ctx context.Context, key string, fn ComputeFunc, presentOnly bool) ([]byte, bool, error) {
	var (
		result []byte
		ok     bool
	)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			current, exists = nil, false
		} else if err != nil {
			return err
		}

		if presentOnly && !exists {
			result, ok = nil, false
			return nil
		}

		next, keep, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if keep {
				pipe.Set(ctx, key, next, s.ttl)
			} else {
				pipe.Del(ctx, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		result, ok = next, keep
		return nil
	}

	for attempt := 0; attempt < maxComputeAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, ok, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, false, err
	}
	return nil, false, ErrComputeContention
}

// Properties reports the store as non-transactional.
func (s *Redis) Properties() Properties {
	return Properties{Transactional: false}
}
