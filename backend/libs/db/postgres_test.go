package db

import (
	"testing"
	"time"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DSN: "postgres://localhost/test"}.withDefaults()

	if opts.MaxOpenConns != defaultMaxOpenConns {
		t.Fatalf("expected %d open conns, got %d", defaultMaxOpenConns, opts.MaxOpenConns)
	}
	if opts.MaxIdleConns != defaultMaxIdleConns {
		t.Fatalf("expected %d idle conns, got %d", defaultMaxIdleConns, opts.MaxIdleConns)
	}
	if opts.ConnLifetime != defaultConnLifetime {
		t.Fatalf("expected lifetime %v, got %v", defaultConnLifetime, opts.ConnLifetime)
	}
	if opts.ConnIdleTime != defaultConnIdleTime {
		t.Fatalf("expected idle time %v, got %v", defaultConnIdleTime, opts.ConnIdleTime)
	}
}

func TestOptionsOverridesKept(t *testing.T) {
	opts := Options{
		DSN:          "postgres://localhost/test",
		MaxOpenConns: 50,
		MaxIdleConns: 10,
		ConnLifetime: 2 * time.Hour,
		ConnIdleTime: time.Minute,
	}.withDefaults()

	if opts.MaxOpenConns != 50 || opts.MaxIdleConns != 10 {
		t.Fatalf("expected configured pool sizes kept, got %d/%d", opts.MaxOpenConns, opts.MaxIdleConns)
	}
	if opts.ConnLifetime != 2*time.Hour || opts.ConnIdleTime != time.Minute {
		t.Fatalf("expected configured durations kept, got %v/%v", opts.ConnLifetime, opts.ConnIdleTime)
	}
}

func TestNewPostgresDBRejectsEmptyDSN(t *testing.T) {
	if _, err := NewPostgresDB(Options{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
