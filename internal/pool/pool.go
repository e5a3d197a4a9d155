// Package pool runs bounded-concurrency batches of check/download tasks,
// reporting progress and surfacing the first error after a full drain.
package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// Progress mirrors a batch's aggregate state at a point in time.
type Progress struct {
	TotalBytes      int64
	DownloadedBytes int64
	TotalItems      int
	CompletedItems  int
	CurrentItem     string
	Speed           float64 // bytes/sec
}

// Task is one unit of work submitted to a Pool. onChunk should be called
// with the number of bytes processed since the previous call, so the
// Pool can report aggregate throughput.
type Task struct {
	Label string
	Size  int64
	Run   func(ctx context.Context, onChunk func(n int)) error
}

// Pool runs a batch of Tasks with at most Limit concurrently active.
type Pool struct {
	limit int

	mu              sync.Mutex
	progress        Progress
	downloadedBytes int64
}

// NewCheckPool returns a Pool sized for metadata/hash-check work, which
// is I/O-light and can run with higher concurrency than downloads.
func NewCheckPool(limit int) *Pool {
	if limit <= 0 {
		limit = 16
	}
	return &Pool{limit: limit}
}

// NewDownloadPool returns a Pool sized for network downloads.
func NewDownloadPool(limit int) *Pool {
	if limit <= 0 {
		limit = 4
	}
	return &Pool{limit: limit}
}

// Run executes every task with at most p.limit concurrently active,
// sending a progress snapshot on progressChan (if non-nil) after every
// completed task and periodically in between, and returning the first
// error in task order after every task has finished. A failing task does
// not cancel the others.
func (p *Pool) Run(ctx context.Context, tasks []Task, progressChan chan<- Progress) error {
	if len(tasks) == 0 {
		return nil
	}

	var totalSize int64
	for _, t := range tasks {
		totalSize += t.Size
	}

	p.mu.Lock()
	p.progress = Progress{TotalBytes: totalSize, TotalItems: len(tasks)}
	p.downloadedBytes = 0
	p.mu.Unlock()

	var completed int64

	stop := make(chan struct{})
	progressDone := make(chan struct{})
	if progressChan != nil {
		go p.reportProgress(ctx, stop, progressDone, &completed, progressChan)
	} else {
		close(progressDone)
	}

	var g errgroup.Group
	g.SetLimit(p.limit)
	errs := make([]error, len(tasks))

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			p.mu.Lock()
			p.progress.CurrentItem = task.Label
			p.mu.Unlock()

			onChunk := func(n int) {
				atomic.AddInt64(&p.downloadedBytes, int64(n))
			}
			if err := task.Run(ctx, onChunk); err != nil {
				errs[i] = err
				return nil
			}

			p.mu.Lock()
			defer p.mu.Unlock()
			snapshot := p.progress
			snapshot.CompletedItems = int(atomic.AddInt64(&completed, 1))
			snapshot.DownloadedBytes = atomic.LoadInt64(&p.downloadedBytes)
			if progressChan != nil {
				progressChan <- snapshot
			}
			return nil
		})
	}

	g.Wait()
	close(stop)
	<-progressDone

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatSpeed renders a bytes/sec rate the way a progress line displays
// it, e.g. "4.2 MB/s".
func FormatSpeed(bytesPerSec float64) string {
	return humanize.Bytes(uint64(bytesPerSec)) + "/s"
}

func (p *Pool) reportProgress(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, completed *int64, out chan<- Progress) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastBytes := int64(0)
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			snapshot := p.progress
			p.mu.Unlock()

			cur := atomic.LoadInt64(&p.downloadedBytes)
			now := time.Now()
			if elapsed := now.Sub(lastTime).Seconds(); elapsed > 0 {
				snapshot.Speed = float64(cur-lastBytes) / elapsed
				lastBytes = cur
				lastTime = now
			}
			snapshot.DownloadedBytes = cur
			snapshot.CompletedItems = int(atomic.LoadInt64(completed))

			select {
			case out <- snapshot:
			default:
			}
		}
	}
}
