package provision

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCancelRegistry_CancelAbortsRegisteredRun(t *testing.T) {
	reg := NewCancelRegistry()
	started := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- reg.Run(context.Background(), 7, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	<-started
	if !reg.Cancel(7) {
		t.Fatal("expected Cancel to find the registered run")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not abort the run")
	}
}

func TestCancelRegistry_CancelUnknownIDReportsFalse(t *testing.T) {
	reg := NewCancelRegistry()
	if reg.Cancel(99) {
		t.Error("expected Cancel to report false for an unregistered update id")
	}
}

func TestCancelRegistry_RunRetiresEntryOnCompletion(t *testing.T) {
	reg := NewCancelRegistry()
	if err := reg.Run(context.Background(), 3, func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if reg.Cancel(3) {
		t.Error("expected no run still registered after Run returned")
	}
}
