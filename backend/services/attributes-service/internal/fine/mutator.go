package fine

import (
	"context"
	"sync"

	"sessionstore/backend/services/attributes-service/internal/kv"
	"sessionstore/backend/services/attributes-service/internal/marshal"
)

// Mutator persists an attribute the caller may have mutated in place after a
// read. It captures the live value and re-marshals it on every Mutate, so the
// written form reflects mutations made through the returned reference.
type Mutator struct {
	store      kv.Store
	key        string
	value      any
	marshaller marshal.Marshaller
}

// NewMutator returns a write-back handle for value under key.
func NewMutator(store kv.Store, key string, value any, marshaller marshal.Marshaller) *Mutator {
	return &Mutator{store: store, key: key, value: value, marshaller: marshaller}
}

// Mutate marshals the captured value and writes it back to the store.
func (m *Mutator) Mutate(ctx context.Context) error {
	raw, err := m.marshaller.Marshal(m.value)
	if err != nil {
		return err
	}
	_, _, err = m.store.Put(ctx, m.key, raw)
	return err
}

// tracker records, per attribute name, the write-back owed at close. It is
// private to one Attributes instance.
type tracker struct {
	mu      sync.Mutex
	pending map[string]*Mutator
}

func newTracker() *tracker {
	return &tracker{pending: make(map[string]*Mutator)}
}

// add registers m under name unless a handle is already registered. It
// reports whether m was inserted.
func (t *tracker) add(name string, m *Mutator) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[name]; ok {
		return false
	}
	t.pending[name] = m
	return true
}

// discard drops any pending write-back for name. A fresh explicit write
// supersedes tracking.
func (t *tracker) discard(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, name)
}

// drain returns all pending write-backs and clears the table.
func (t *tracker) drain() []*Mutator {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := make([]*Mutator, 0, len(t.pending))
	for _, m := range t.pending {
		pending = append(pending, m)
	}
	t.pending = make(map[string]*Mutator)
	return pending
}
