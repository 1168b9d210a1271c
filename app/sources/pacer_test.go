package sources

import (
	"context"
	"testing"
	"time"
)

func TestIntervalPacer_FirstCallImmediate(t *testing.T) {
	pacer := NewIntervalPacer(time.Second)

	start := time.Now()
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First wait should return immediately, took %v", elapsed)
	}
}

func TestIntervalPacer_SpacesCalls(t *testing.T) {
	pacer := NewIntervalPacer(50 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Three calls at 50ms spacing should take >= 100ms, took %v", elapsed)
	}
}

func TestIntervalPacer_CancelledContext(t *testing.T) {
	pacer := NewIntervalPacer(10 * time.Second)

	// Consume the free first slot
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pacer.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNopPacer(t *testing.T) {
	var pacer NopPacer
	if err := pacer.Wait(context.Background()); err != nil {
		t.Errorf("NopPacer should never block or fail, got %v", err)
	}
}
