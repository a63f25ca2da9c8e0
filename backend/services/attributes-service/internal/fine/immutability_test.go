package fine

import (
	"testing"
	"time"
)

func TestDefaultImmutability(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"string", "x", true},
		{"bool", true, true},
		{"int", 42, true},
		{"float", 4.2, true},
		{"time", time.Now(), true},
		{"map", map[string]any{}, false},
		{"slice", []any{1}, false},
		{"pointer", new(int), false},
		{"struct", struct{ N int }{1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultImmutability(tc.value); got != tc.want {
				t.Fatalf("DefaultImmutability(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
