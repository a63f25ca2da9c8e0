package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"sessionstore/backend/services/attributes-service/internal/kv"
)

func newTestService() *AttributesService {
	store := kv.NewMemory(false)
	return NewAttributesService(store, store, zap.NewNop())
}

func TestServiceSetGetRemoveFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	previous, err := svc.SetAttribute(ctx, "s1", "count", 1)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if previous != nil {
		t.Fatalf("expected no previous value, got %v", previous)
	}

	value, found, err := svc.GetAttribute(ctx, "s1", "count")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != float64(1) {
		t.Fatalf("expected 1, got %v (found=%v)", value, found)
	}

	names, err := svc.Names(ctx, "s1")
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != "count" {
		t.Fatalf("expected [count], got %v", names)
	}

	removed, found, err := svc.RemoveAttribute(ctx, "s1", "count")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !found || removed != float64(1) {
		t.Fatalf("expected removed 1, got %v (found=%v)", removed, found)
	}

	_, found, err = svc.GetAttribute(ctx, "s1", "count")
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if found {
		t.Fatal("expected attribute gone")
	}
}

func TestServiceAbsentResults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, found, err := svc.GetAttribute(ctx, "s1", "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}

	_, found, err = svc.RemoveAttribute(ctx, "s1", "missing")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.SetAttribute(ctx, "s1", "user", "alice"); err != nil {
		t.Fatalf("set s1: %v", err)
	}
	if _, err := svc.SetAttribute(ctx, "s2", "user", "bob"); err != nil {
		t.Fatalf("set s2: %v", err)
	}

	value, _, err := svc.GetAttribute(ctx, "s1", "user")
	if err != nil {
		t.Fatalf("get s1: %v", err)
	}
	if value != "alice" {
		t.Fatalf("expected alice, got %v", value)
	}

	value, _, err = svc.GetAttribute(ctx, "s2", "user")
	if err != nil {
		t.Fatalf("get s2: %v", err)
	}
	if value != "bob" {
		t.Fatalf("expected bob, got %v", value)
	}
}

func TestServiceSetNilRemoves(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.SetAttribute(ctx, "s1", "flag", true); err != nil {
		t.Fatalf("set: %v", err)
	}

	previous, err := svc.SetAttribute(ctx, "s1", "flag", nil)
	if err != nil {
		t.Fatalf("set nil: %v", err)
	}
	if previous != true {
		t.Fatalf("expected previous true, got %v", previous)
	}

	_, found, err := svc.GetAttribute(ctx, "s1", "flag")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected attribute removed")
	}
}
