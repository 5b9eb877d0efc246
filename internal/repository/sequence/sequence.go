// Package sequence hands out note ids.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// highest reports the largest stored note id.
type highest interface {
	MaxID(ctx context.Context) (uint64, error)
}

// Max derives the next id as max(id)+1, so ids freed by deletes other than the newest
// are never handed out again. It is only safe while a single writer holds the note
// service lock.
type Max struct {
	notes highest
}

// NewMax creates a sequencer that continues after the highest stored id.
func NewMax(h highest) *Max {
	return &Max{notes: h}
}

// NextID returns max(id)+1.
func (s *Max) NextID(ctx context.Context) (uint64, error) {
	n, err := s.notes.MaxID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return n + 1, nil
}

// kvStore is the consumer interface for the Redis counter (ISP).
type kvStore interface {
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Redis hands out ids from an atomic INCR counter, seeded once from the highest stored id
// so ids continue after notes written before the counter existed.
type Redis struct {
	kv    kvStore
	notes highest
	key   string

	mu     sync.Mutex
	seeded bool
}

// NewRedis creates an INCR-backed sequencer on key.
func NewRedis(kv kvStore, notes highest, key string) *Redis {
	return &Redis{kv: kv, notes: notes, key: key}
}

// NextID returns the next counter value.
func (s *Redis) NextID(ctx context.Context) (uint64, error) {
	if err := s.seed(ctx); err != nil {
		return 0, err
	}
	n, err := s.kv.Incr(ctx, s.key)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return uint64(n), nil
}

func (s *Redis) seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}

	n, err := s.notes.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("seed id counter: %w", err)
	}
	if _, err := s.kv.SetNX(ctx, s.key, []byte(strconv.FormatUint(n, 10))); err != nil {
		return fmt.Errorf("seed id counter: %w", err)
	}
	s.seeded = true
	return nil
}
