package kv

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-process Store guarded by a mutex. It backs tests and the
// development backend.
type Memory struct {
	mu            sync.Mutex
	items         map[string][]byte
	transactional bool
}

// NewMemory returns an empty in-memory store reporting the given
// transactional flag.
func NewMemory(transactional bool) *Memory {
	return &Memory{
		items:         make(map[string][]byte),
		transactional: transactional,
	}
}

// Get returns the value stored under key.
func (s *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Put stores value under key and returns the previous value, if any.
func (s *Memory) Put(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.items[key]
	s.items[key] = bytes.Clone(value)
	return previous, existed, nil
}

// Remove deletes key and returns the removed value, if any.
func (s *Memory) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.items[key]
	delete(s.items, key)
	return previous, existed, nil
}

// Compute applies fn under the store lock, so exactly one function runs per
// key at a time.
func (s *Memory) Compute(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute(key, fn)
}

// ComputeIfPresent behaves like Compute but leaves an absent key untouched.
func (s *Memory) ComputeIfPresent(ctx context.Context, key string, fn ComputeFunc) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil, false, nil
	}
	return s.compute(key, fn)
}

func (s *Memory) compute(key string, fn ComputeFunc) ([]byte, bool, error) {
	current, exists := s.items[key]
	next, keep, err := fn(bytes.Clone(current), exists)
	if err != nil {
		return nil, false, err
	}
	if !keep {
		delete(s.items, key)
		return nil, false, nil
	}
	s.items[key] = bytes.Clone(next)
	return next, true, nil
}

// Properties reports the configured transactional flag.
func (s *Memory) Properties() Properties {
	return Properties{Transactional: s.transactional}
}

// Len reports the number of stored entries.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
