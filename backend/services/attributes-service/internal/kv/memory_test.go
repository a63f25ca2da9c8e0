package kv

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"testing"
)

func TestMemoryPutReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(false)

	previous, existed, err := store.Put(ctx, "k", []byte("v1"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if existed || previous != nil {
		t.Fatalf("expected no previous value, got %q", previous)
	}

	previous, existed, err = store.Put(ctx, "k", []byte("v2"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !existed || !bytes.Equal(previous, []byte("v1")) {
		t.Fatalf("expected previous v1, got %q", previous)
	}
}

func TestMemoryRemoveReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(false)

	if _, existed, _ := store.Remove(ctx, "k"); existed {
		t.Fatal("expected absent key")
	}

	if _, _, err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	previous, existed, err := store.Remove(ctx, "k")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !existed || !bytes.Equal(previous, []byte("v")) {
		t.Fatalf("expected previous v, got %q", previous)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected key gone")
	}
}

func TestMemoryComputeInsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(false)

	value, ok, err := store.Compute(ctx, "k", func(current []byte, exists bool) ([]byte, bool, error) {
		if exists {
			t.Fatal("expected absent key")
		}
		return []byte("v1"), true, nil
	})
	if err != nil || !ok || !bytes.Equal(value, []byte("v1")) {
		t.Fatalf("insert: value=%q ok=%v err=%v", value, ok, err)
	}

	value, ok, err = store.Compute(ctx, "k", func(current []byte, exists bool) ([]byte, bool, error) {
		if !exists || !bytes.Equal(current, []byte("v1")) {
			t.Fatalf("expected current v1, got %q", current)
		}
		return []byte("v2"), true, nil
	})
	if err != nil || !ok || !bytes.Equal(value, []byte("v2")) {
		t.Fatalf("update: value=%q ok=%v err=%v", value, ok, err)
	}

	_, ok, err = store.Compute(ctx, "k", func(current []byte, exists bool) ([]byte, bool, error) {
		return nil, false, nil
	})
	if err != nil || ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, present, _ := store.Get(ctx, "k"); present {
		t.Fatal("expected key removed")
	}
}

func TestMemoryComputeIfPresentSkipsAbsentKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(false)

	called := false
	_, ok, err := store.ComputeIfPresent(ctx, "missing", func(current []byte, exists bool) ([]byte, bool, error) {
		called = true
		return nil, false, nil
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if ok || called {
		t.Fatal("expected absent key to be left untouched")
	}
}

func TestMemoryComputeIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(false)

	const workers = 64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := store.Compute(ctx, "counter", func(current []byte, exists bool) ([]byte, bool, error) {
				n := 0
				if exists {
					parsed, err := strconv.Atoi(string(current))
					if err != nil {
						return nil, false, err
					}
					n = parsed
				}
				return []byte(strconv.Itoa(n + 1)), true, nil
			})
			if err != nil {
				t.Errorf("compute: %v", err)
			}
		}()
	}
	wg.Wait()

	value, ok, err := store.Get(ctx, "counter")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != strconv.Itoa(workers) {
		t.Fatalf("expected %d, got %s", workers, value)
	}
}

func TestMemoryProperties(t *testing.T) {
	if NewMemory(false).Properties().Transactional {
		t.Fatal("expected non-transactional store")
	}
	if !NewMemory(true).Properties().Transactional {
		t.Fatal("expected transactional store")
	}
}
