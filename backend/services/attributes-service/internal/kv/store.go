package kv

import "context"

// ComputeFunc transforms the current value of a key. The store applies the
// result atomically with exclusive access to that key. Implementations may
// evaluate the function more than once under contention, so it must be free
// of side effects. Returning keep=false removes the key.
type ComputeFunc func(current []byte, exists bool) (next []byte, keep bool, err error)

// Properties describes fixed characteristics of a store, read once by
// consumers at construction.
type Properties struct {
	// Transactional reports whether writes join a surrounding transaction
	// and become visible to later reads inside it before commit.
	Transactional bool
}

// Store is a keyed remote cache. Absence is reported through the boolean
// result, never through an error.
type Store interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key and returns the previous value, if any.
	Put(ctx context.Context, key string, value []byte) (previous []byte, existed bool, err error)

	// Remove deletes key and returns the removed value, if any.
	Remove(ctx context.Context, key string) (previous []byte, existed bool, err error)

	// Compute applies fn to the current value of key and returns the
	// resulting value.
	Compute(ctx context.Context, key string, fn ComputeFunc) (value []byte, ok bool, err error)

	// ComputeIfPresent behaves like Compute but leaves an absent key
	// untouched.
	ComputeIfPresent(ctx context.Context, key string, fn ComputeFunc) (value []byte, ok bool, err error)

	// Properties reports the store's fixed characteristics.
	Properties() Properties
}
