package fine

import (
	"testing"

	"github.com/google/uuid"
)

func applyFunc(t *testing.T, fn func(current []byte, exists bool) ([]byte, bool, error), current []byte, exists bool) ([]byte, bool) {
	t.Helper()
	next, keep, err := fn(current, exists)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return next, keep
}

func TestDecodeNamesAbsent(t *testing.T) {
	names, err := DecodeNames(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if names == nil {
		t.Fatal("expected non-nil map")
	}
	if len(names) != 0 {
		t.Fatalf("expected empty map, got %v", names)
	}
}

func TestPutNameInsertsWhenAbsent(t *testing.T) {
	for _, copyOnWrite := range []bool{true, false} {
		id := uuid.New()
		next, keep := applyFunc(t, PutName("a", id, copyOnWrite), nil, false)
		if !keep {
			t.Fatal("expected index kept")
		}
		names, err := DecodeNames(next)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if names["a"] != id {
			t.Fatalf("copyOnWrite=%v: expected a -> %s, got %v", copyOnWrite, id, names)
		}
	}
}

func TestPutNameExistingIDWins(t *testing.T) {
	for _, copyOnWrite := range []bool{true, false} {
		winner := uuid.New()
		loser := uuid.New()

		encoded, _ := applyFunc(t, PutName("a", winner, copyOnWrite), nil, false)
		next, keep := applyFunc(t, PutName("a", loser, copyOnWrite), encoded, true)
		if !keep {
			t.Fatal("expected index kept")
		}
		names, err := DecodeNames(next)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if names["a"] != winner {
			t.Fatalf("copyOnWrite=%v: expected first id to win, got %v", copyOnWrite, names["a"])
		}
	}
}

func TestPutNamesForDistinctNamesMerge(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()

	// Interleaved compound updates on the same index value.
	encoded, _ := applyFunc(t, PutName("a", idA, false), nil, false)
	next, _ := applyFunc(t, PutName("b", idB, true), encoded, true)

	names, err := DecodeNames(next)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if names["a"] != idA || names["b"] != idB {
		t.Fatalf("expected both names to survive, got %v", names)
	}
}

func TestRemoveNameDropsEntry(t *testing.T) {
	for _, copyOnWrite := range []bool{true, false} {
		encoded, _ := applyFunc(t, PutName("a", uuid.New(), copyOnWrite), nil, false)
		next, keep := applyFunc(t, RemoveName("a", copyOnWrite), encoded, true)
		if !keep {
			t.Fatal("expected empty index to stay stored")
		}
		names, err := DecodeNames(next)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(names) != 0 {
			t.Fatalf("copyOnWrite=%v: expected empty index, got %v", copyOnWrite, names)
		}
	}
}

func TestRemoveNameMissingIsNoOp(t *testing.T) {
	id := uuid.New()
	encoded, _ := applyFunc(t, PutName("a", id, false), nil, false)

	next, keep := applyFunc(t, RemoveName("other", false), encoded, true)
	if !keep {
		t.Fatal("expected index kept")
	}
	names, err := DecodeNames(next)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if names["a"] != id {
		t.Fatalf("expected index unchanged, got %v", names)
	}
}

func TestRemoveNameAbsentIndex(t *testing.T) {
	_, keep := applyFunc(t, RemoveName("a", false), nil, false)
	if keep {
		t.Fatal("expected absent index to stay absent")
	}
}
