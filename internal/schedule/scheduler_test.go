package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestOverlappingTriggersAreSkipped(t *testing.T) {
	s := New(slog.Default())

	var inFlight atomic.Int32
	var maxInFlight atomic.Int32
	var runs atomic.Int32
	err := s.Add("@every 1s", func() {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		runs.Add(1)
		time.Sleep(2500 * time.Millisecond) // longer than the trigger interval
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(3500 * time.Millisecond)
	cancel()
	s.Stop()

	if got := maxInFlight.Load(); got > 1 {
		t.Fatalf("expected at most one run in flight, saw %d", got)
	}
	if got := runs.Load(); got < 1 {
		t.Fatalf("expected at least one run, saw %d", got)
	}
}

func TestRejectsBadSpec(t *testing.T) {
	s := New(slog.Default())
	if err := s.Add("not a cron spec", func() {}); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
