package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_CoalescesBurstsWithinWindow(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var received []Status

	handler := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	for i := 1; i <= 5; i++ {
		b.Emit(1, handler, Status{Kind: LibraryCheck, Done: i, Total: 5})
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected exactly 1 coalesced event, got %d", len(received))
	}
	if received[0].Done != 5 {
		t.Errorf("expected coalesced event to carry the latest value (5), got %d", received[0].Done)
	}
}

func TestBus_DoneFlushesImmediatelyAndRetiresRun(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var received []Status
	handler := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	b.Emit(2, handler, Status{Kind: LibraryCheck, Done: 1, Total: 1})
	b.Emit(2, handler, Status{Kind: Done})

	mu.Lock()
	n := len(received)
	last := received[n-1].Kind
	mu.Unlock()

	if n == 0 || last != Done {
		t.Fatalf("expected Done to flush immediately, got %d events, last=%v", n, last)
	}

	b.mu.Lock()
	_, stillTracked := b.limiters[limiterKey{2, LibraryCheck}]
	b.mu.Unlock()
	if stillTracked {
		t.Error("expected limiter for update id to be retired after Done")
	}
}

func TestBus_DistinctVariantsDoNotClobberEachOther(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	received := map[Kind]Status{}
	handler := func(s Status) {
		mu.Lock()
		received[s.Kind] = s
		mu.Unlock()
	}

	// Two different variants arriving within the same debounce window
	// must each survive, rather than the second overwriting the first's
	// pending slot.
	b.Emit(1, handler, Status{Kind: LibraryCheck, Done: 1, Total: 5})
	b.Emit(1, handler, Status{Kind: AssetsCheck, Done: 2, Total: 5})

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("expected both variants to be delivered, got %d: %v", len(received), received)
	}
	if received[LibraryCheck].Done != 1 {
		t.Errorf("expected LibraryCheck to carry its own value, got %+v", received[LibraryCheck])
	}
	if received[AssetsCheck].Done != 2 {
		t.Errorf("expected AssetsCheck to carry its own value, got %+v", received[AssetsCheck])
	}
}

func TestBus_SeparatesDifferentUpdateIDs(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	counts := map[int]int{}
	handlerFor := func(id int) Handler {
		return func(s Status) {
			mu.Lock()
			counts[id]++
			mu.Unlock()
		}
	}

	b.Emit(10, handlerFor(10), Status{Kind: AssetsCheck, Done: 1, Total: 2})
	b.Emit(20, handlerFor(20), Status{Kind: AssetsCheck, Done: 1, Total: 2})

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if counts[10] != 1 || counts[20] != 1 {
		t.Errorf("expected one event per update id, got %v", counts)
	}
}
