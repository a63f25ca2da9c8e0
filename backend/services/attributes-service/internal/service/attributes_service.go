package service

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"sessionstore/backend/services/attributes-service/internal/fine"
	"sessionstore/backend/services/attributes-service/internal/kv"
	"sessionstore/backend/services/attributes-service/internal/marshal"
)

// AttributesService opens per-request attribute views over the keyed cache.
// Every operation fetches a fresh name-index snapshot, runs against it, and
// closes the view so deferred write-backs flush.
type AttributesService struct {
	names      kv.Store
	values     kv.Store
	marshaller marshal.Marshaller
	logger     *zap.Logger
}

// NewAttributesService builds the service over the given stores. Name index
// and attribute values may share one store.
func NewAttributesService(names, values kv.Store, logger *zap.Logger) *AttributesService {
	return &AttributesService{
		names:      names,
		values:     values,
		marshaller: marshal.JSON{},
		logger:     logger,
	}
}

// Names lists the attribute names of a session.
func (s *AttributesService) Names(ctx context.Context, sessionID string) ([]string, error) {
	view, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	names := view.Names()
	if err := view.Close(ctx); err != nil {
		return nil, err
	}
	return names, nil
}

// GetAttribute reads one attribute; found reports presence.
func (s *AttributesService) GetAttribute(ctx context.Context, sessionID, name string) (any, bool, error) {
	view, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	value, opErr := view.Get(ctx, name)
	closeErr := view.Close(ctx)
	if opErr != nil {
		return nil, false, opErr
	}
	if closeErr != nil {
		return nil, false, closeErr
	}
	return value, value != nil, nil
}

// SetAttribute writes one attribute and returns the previous value. A nil
// value removes the attribute.
func (s *AttributesService) SetAttribute(ctx context.Context, sessionID, name string, value any) (any, error) {
	view, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	previous, opErr := view.Set(ctx, name, value)
	closeErr := view.Close(ctx)
	if opErr != nil {
		return nil, opErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	s.logger.Debug("attribute set",
		zap.String("session_id", sessionID),
		zap.String("name", name),
	)
	return previous, nil
}

// RemoveAttribute deletes one attribute and returns its last value; found
// reports whether the name was set.
func (s *AttributesService) RemoveAttribute(ctx context.Context, sessionID, name string) (any, bool, error) {
	view, err := s.open(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	found := slices.Contains(view.Names(), name)
	removed, opErr := view.Remove(ctx, name)
	closeErr := view.Close(ctx)
	if opErr != nil {
		return nil, false, opErr
	}
	if closeErr != nil {
		return nil, false, closeErr
	}

	if found {
		s.logger.Debug("attribute removed",
			zap.String("session_id", sessionID),
			zap.String("name", name),
		)
	}
	return removed, found, nil
}

// open fetches the session's name-index snapshot and builds a view over it.
func (s *AttributesService) open(ctx context.Context, sessionID string) (*fine.Attributes, error) {
	raw, _, err := s.names.Get(ctx, fine.NamesKey{SessionID: sessionID}.String())
	if err != nil {
		return nil, err
	}
	names, err := fine.DecodeNames(raw)
	if err != nil {
		return nil, err
	}
	return fine.NewAttributes(sessionID, names, s.names, s.values, s.marshaller, fine.DefaultImmutability), nil
}
