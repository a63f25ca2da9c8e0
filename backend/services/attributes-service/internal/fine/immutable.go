package fine

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"sessionstore/backend/services/attributes-service/internal/kv"
	"sessionstore/backend/services/attributes-service/internal/marshal"
)

// View is the read contract over one session's attributes.
type View interface {
	// Names lists the attribute names present in the index snapshot.
	Names() []string

	// Get returns the attribute stored under name, or nil when absent.
	Get(ctx context.Context, name string) (any, error)
}

// Immutable is a read-only view over one session's attributes. Reads never
// register write-backs; use Attributes for the read-write contract.
type Immutable struct {
	sessionID  string
	names      map[string]uuid.UUID
	values     kv.Store
	marshaller marshal.Marshaller
}

var _ View = (*Immutable)(nil)

// NewImmutable builds a read-only view over sessionID from a name-index
// snapshot. A nil snapshot is treated as empty.
func NewImmutable(sessionID string, names map[string]uuid.UUID, values kv.Store, marshaller marshal.Marshaller) *Immutable {
	if names == nil {
		names = make(map[string]uuid.UUID)
	}
	return &Immutable{
		sessionID:  sessionID,
		names:      names,
		values:     values,
		marshaller: marshaller,
	}
}

// Names lists the attribute names present in the index snapshot.
func (a *Immutable) Names() []string {
	names := make([]string, 0, len(a.names))
	for name := range a.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the attribute stored under name, or nil when absent. A lost or
// evicted value-cache entry reads as absent.
func (a *Immutable) Get(ctx context.Context, name string) (any, error) {
	id, ok := a.names[name]
	if !ok {
		return nil, nil
	}

	raw, ok, err := a.values.Get(ctx, AttributeKey{SessionID: a.sessionID, AttributeID: id}.String())
	if err != nil || !ok {
		return nil, err
	}
	return a.marshaller.Unmarshal(raw)
}
