package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRegistry_OpenCloseIsActive(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	active, err := reg.IsActive(ctx, 1, "tok")
	if err != nil || active {
		t.Fatalf("expected inactive before open, got active=%v err=%v", active, err)
	}

	if err := reg.Open(ctx, 1, "tok", time.Hour); err != nil {
		t.Fatalf("open: %v", err)
	}
	active, err = reg.IsActive(ctx, 1, "tok")
	if err != nil || !active {
		t.Fatalf("expected active after open, got active=%v err=%v", active, err)
	}

	// A different token for the same subject is a distinct record.
	active, _ = reg.IsActive(ctx, 1, "other")
	if active {
		t.Fatalf("expected other token inactive")
	}

	if err := reg.Close(ctx, 1, "tok"); err != nil {
		t.Fatalf("close: %v", err)
	}
	active, _ = reg.IsActive(ctx, 1, "tok")
	if active {
		t.Fatalf("expected inactive after close")
	}

	// Close is idempotent.
	if err := reg.Close(ctx, 1, "tok"); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestMemoryRegistry_Expiry(t *testing.T) {
	reg := NewMemoryRegistry()
	now := time.Unix(1700000000, 0)
	reg.SetClock(func() time.Time { return now })
	ctx := context.Background()

	if err := reg.Open(ctx, 1, "tok", time.Hour); err != nil {
		t.Fatalf("open: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if active, _ := reg.IsActive(ctx, 1, "tok"); !active {
		t.Fatalf("expected active before expiry")
	}

	now = now.Add(2 * time.Minute)
	if active, _ := reg.IsActive(ctx, 1, "tok"); active {
		t.Fatalf("expected inactive after expiry")
	}
}

func TestMemoryRegistry_ConcurrentSessionsPerSubject(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	if err := reg.Open(ctx, 1, "tok-a", time.Hour); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := reg.Open(ctx, 1, "tok-b", time.Hour); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := reg.Close(ctx, 1, "tok-a"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if active, _ := reg.IsActive(ctx, 1, "tok-b"); !active {
		t.Fatalf("closing one session must not touch the other")
	}
}
