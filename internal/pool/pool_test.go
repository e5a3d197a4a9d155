package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewCheckPool(4)

	var ran int64
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{
			Label: "task",
			Run: func(ctx context.Context, onChunk func(int)) error {
				atomic.AddInt64(&ran, 1)
				return nil
			},
		}
	}

	if err := p.Run(context.Background(), tasks, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ran != 10 {
		t.Errorf("expected 10 tasks to run, got %d", ran)
	}
}

func TestPool_RespectsLimit(t *testing.T) {
	p := NewDownloadPool(2)

	var active, maxActive int64
	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{
			Run: func(ctx context.Context, onChunk func(int)) error {
				n := atomic.AddInt64(&active, 1)
				for {
					cur := atomic.LoadInt64(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt64(&maxActive, cur, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt64(&active, -1)
				return nil
			},
		}
	}

	if err := p.Run(context.Background(), tasks, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if maxActive > 2 {
		t.Errorf("expected at most 2 concurrent tasks, saw %d", maxActive)
	}
}

func TestPool_SurfacesFirstError(t *testing.T) {
	p := NewCheckPool(4)

	wantErr := errors.New("boom")
	tasks := []Task{
		{Run: func(ctx context.Context, onChunk func(int)) error { return nil }},
		{Run: func(ctx context.Context, onChunk func(int)) error { return wantErr }},
		{Run: func(ctx context.Context, onChunk func(int)) error { return nil }},
	}

	err := p.Run(context.Background(), tasks, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wantErr, got %v", err)
	}
}

func TestPool_EmptyBatch(t *testing.T) {
	p := NewCheckPool(4)
	if err := p.Run(context.Background(), nil, nil); err != nil {
		t.Fatalf("empty batch should not fail: %v", err)
	}
}

func TestPool_ReportsProgress(t *testing.T) {
	p := NewDownloadPool(1)

	tasks := []Task{
		{
			Size: 100,
			Run: func(ctx context.Context, onChunk func(int)) error {
				onChunk(100)
				time.Sleep(150 * time.Millisecond)
				return nil
			},
		},
	}

	progressChan := make(chan Progress, 8)
	if err := p.Run(context.Background(), tasks, progressChan); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	close(progressChan)

	var saw bool
	for range progressChan {
		saw = true
	}
	if !saw {
		t.Error("expected at least one progress update")
	}
}

func TestPool_CancellationStopsRemainingWork(t *testing.T) {
	p := NewCheckPool(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	tasks := []Task{
		{
			Run: func(ctx context.Context, onChunk func(int)) error {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				atomic.AddInt64(&ran, 1)
				return nil
			},
		},
	}

	err := p.Run(ctx, tasks, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
