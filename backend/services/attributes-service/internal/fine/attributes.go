package fine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"sessionstore/backend/services/attributes-service/internal/kv"
	"sessionstore/backend/services/attributes-service/internal/marshal"
)

// NotSerializableError reports a Set with a value the marshaller cannot
// encode. It carries the concrete type of the rejected value.
type NotSerializableError struct {
	Type string
}

func (e *NotSerializableError) Error() string {
	return fmt.Sprintf("attributes: value of type %s is not serializable", e.Type)
}

// Attributes is the read-write view over one session's attributes. Each
// attribute lives in its own cache entry addressed through the session's name
// index, so updating one attribute never re-serializes the others. The index
// itself is mutated through atomic compound updates applied by the store, so
// concurrent views of the same session on other nodes merge instead of
// overwriting each other.
//
// An instance is scoped to one request: it owns a private snapshot of the
// name index, replaced wholesale after every compound update, and a private
// table of deferred write-backs. Close must be called when the request
// finishes.
type Attributes struct {
	sessionID     string
	names         map[string]uuid.UUID
	nameStore     kv.Store
	values        kv.Store
	marshaller    marshal.Marshaller
	isImmutable   Immutability
	transactional bool
	mutations     *tracker
}

var _ View = (*Attributes)(nil)

// NewAttributes builds a read-write view over sessionID from a name-index
// snapshot. A nil snapshot is treated as empty. The transactional flag is
// read from the value store once and fixed for the view's lifetime; a nil
// predicate falls back to DefaultImmutability.
func NewAttributes(sessionID string, names map[string]uuid.UUID, nameStore, values kv.Store, marshaller marshal.Marshaller, isImmutable Immutability) *Attributes {
	if names == nil {
		names = make(map[string]uuid.UUID)
	}
	if isImmutable == nil {
		isImmutable = DefaultImmutability
	}
	return &Attributes{
		sessionID:     sessionID,
		names:         names,
		nameStore:     nameStore,
		values:        values,
		marshaller:    marshaller,
		isImmutable:   isImmutable,
		transactional: values.Properties().Transactional,
		mutations:     newTracker(),
	}
}

// Names lists the attribute names present in the local index snapshot.
func (a *Attributes) Names() []string {
	names := make([]string, 0, len(a.names))
	for name := range a.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the attribute stored under name, or nil when absent. Reading a
// mutable value registers it for write-back, since the caller may change it
// in place without an explicit Set. In transactional mode the write-back is
// submitted immediately so the surrounding transaction carries the entry in
// its write set; otherwise it is deferred to Close.
func (a *Attributes) Get(ctx context.Context, name string) (any, error) {
	id, ok := a.names[name]
	if !ok {
		return nil, nil
	}

	key := AttributeKey{SessionID: a.sessionID, AttributeID: id}.String()
	raw, ok, err := a.values.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A lost or evicted entry reads as absent.
		return nil, nil
	}

	value, err := a.marshaller.Unmarshal(raw)
	if err != nil {
		return nil, err
	}

	if value != nil && !a.isImmutable(value) {
		m := NewMutator(a.values, key, value, a.marshaller)
		if a.mutations.add(name, m) && a.transactional {
			if err := m.Mutate(ctx); err != nil {
				return nil, err
			}
		}
	}
	return value, nil
}

// Set stores value under name and returns the previous value, or nil when the
// name was unset. A nil value, including a typed nil such as (*T)(nil), is
// equivalent to Remove: a typed nil would marshal to null and read back as
// absent anyway.
func (a *Attributes) Set(ctx context.Context, name string, value any) (any, error) {
	if isNil(value) {
		return a.Remove(ctx, name)
	}
	if !a.marshaller.Marshallable(value) {
		return nil, &NotSerializableError{Type: fmt.Sprintf("%T", value)}
	}

	raw, err := a.marshaller.Marshal(value)
	if err != nil {
		return nil, err
	}

	id, ok := a.names[name]
	if !ok {
		result, _, err := a.nameStore.Compute(ctx, NamesKey{SessionID: a.sessionID}.String(), PutName(name, uuid.New(), a.transactional))
		if err != nil {
			return nil, err
		}
		if err := a.swapNames(result); err != nil {
			return nil, err
		}
		// The id now indexed is authoritative: a concurrent writer may
		// have won the insert for this name, discarding ours.
		id, ok = a.names[name]
		if !ok {
			return nil, fmt.Errorf("attributes: %q missing from index after update", name)
		}
	}

	previous, existed, err := a.values.Put(ctx, AttributeKey{SessionID: a.sessionID, AttributeID: id}.String(), raw)
	if err != nil {
		return nil, err
	}
	a.mutations.discard(name)
	if !existed {
		return nil, nil
	}
	return a.marshaller.Unmarshal(previous)
}

// Remove deletes the attribute stored under name and returns its last value,
// or nil when the name was unset. An unset name issues no remote calls.
func (a *Attributes) Remove(ctx context.Context, name string) (any, error) {
	id, ok := a.names[name]
	if !ok {
		return nil, nil
	}

	// Optimistic local removal, swapped as a whole map so readers never
	// observe a half-updated snapshot.
	next := make(map[string]uuid.UUID, len(a.names))
	for n, v := range a.names {
		if n != name {
			next[n] = v
		}
	}
	a.names = next

	result, _, err := a.nameStore.ComputeIfPresent(ctx, NamesKey{SessionID: a.sessionID}.String(), RemoveName(name, a.transactional))
	if err != nil {
		return nil, err
	}
	if err := a.swapNames(result); err != nil {
		return nil, err
	}

	previous, existed, err := a.values.Remove(ctx, AttributeKey{SessionID: a.sessionID, AttributeID: id}.String())
	if err != nil {
		return nil, err
	}
	a.mutations.discard(name)
	if !existed {
		return nil, nil
	}
	return a.marshaller.Unmarshal(previous)
}

// Close flushes deferred write-backs. In transactional mode they were already
// submitted at read time, so only the table is cleared. The table is cleared
// even when a flush fails, so a later Close never repeats the same flush;
// every pending write-back is attempted and the failures are joined.
func (a *Attributes) Close(ctx context.Context) error {
	pending := a.mutations.drain()
	if a.transactional {
		return nil
	}

	var errs []error
	for _, m := range pending {
		if err := m.Mutate(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isNil reports whether value is nil, untyped or typed. value == nil misses
// nil pointers, maps, slices and the like wrapped in a non-nil interface.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// swapNames replaces the local snapshot with the result of a compound update.
// An absent result yields an empty, never nil, map.
func (a *Attributes) swapNames(data []byte) error {
	names, err := DecodeNames(data)
	if err != nil {
		return err
	}
	a.names = names
	return nil
}
