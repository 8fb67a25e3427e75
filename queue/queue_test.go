package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-iocp/api"
	"github.com/momentics/hioload-iocp/queue"
)

func TestQueue_FIFO(t *testing.T) {
	q := queue.New[int](1)
	for i := 0; i < 10; i++ {
		if err := q.Insert(i); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}
	if d := q.ReadState(); d != 10 {
		t.Fatalf("ReadState = %d, want 10", d)
	}
	for i := 0; i < 10; i++ {
		v, err := q.Remove(context.Background(), queue.Forever)
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if v != i {
			t.Fatalf("Remove = %d, want %d", v, i)
		}
	}
	if d := q.ReadState(); d != 0 {
		t.Fatalf("ReadState after drain = %d, want 0", d)
	}
}

func TestQueue_EmptyPoll(t *testing.T) {
	q := queue.New[int](1)
	start := time.Now()
	_, err := q.Remove(context.Background(), 0)
	if !errors.Is(err, api.ErrTimedOut) {
		t.Fatalf("poll on empty queue = %v, want ErrTimedOut", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("poll did not return immediately")
	}
}

func TestQueue_Timeout(t *testing.T) {
	q := queue.New[int](1)
	start := time.Now()
	_, err := q.Remove(context.Background(), 20*time.Millisecond)
	if !errors.Is(err, api.ErrTimedOut) {
		t.Fatalf("Remove = %v, want ErrTimedOut", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Remove returned before the timeout elapsed")
	}
}

func TestQueue_Interrupted(t *testing.T) {
	q := queue.New[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := q.Remove(ctx, queue.Forever)
	if !errors.Is(err, api.ErrInterrupted) {
		t.Fatalf("Remove = %v, want ErrInterrupted", err)
	}
	// The interrupted wait consumed nothing.
	if err := q.Insert(42); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if d := q.ReadState(); d != 1 {
		t.Fatalf("ReadState = %d, want 1", d)
	}
}

func TestQueue_BlockedRemoveWokenByInsert(t *testing.T) {
	q := queue.New[string](1)
	got := make(chan string, 1)
	go func() {
		v, err := q.Remove(context.Background(), queue.Forever)
		if err != nil {
			t.Errorf("Remove failed: %v", err)
			return
		}
		got <- v
	}()
	time.Sleep(10 * time.Millisecond)
	if err := q.Insert("hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	select {
	case v := <-got:
		if v != "hello" {
			t.Fatalf("got %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked Remove was not woken by Insert")
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	q := queue.New[int](1)
	if err := q.Insert(1); err != nil {
		t.Fatal(err)
	}
	if err := q.Insert(2); err != nil {
		t.Fatal(err)
	}

	// First consumer takes an entry and stays active.
	firstDone := make(chan struct{})
	release := make(chan struct{})
	go func() {
		defer close(firstDone)
		v, err := q.Remove(context.Background(), queue.Forever)
		if err != nil || v != 1 {
			t.Errorf("first Remove = %d, %v", v, err)
			return
		}
		<-release
		q.Detach()
	}()

	// Give the first consumer time to become active.
	time.Sleep(20 * time.Millisecond)

	// A second consumer is throttled even though an entry is queued.
	if _, err := q.Remove(context.Background(), 50*time.Millisecond); !errors.Is(err, api.ErrTimedOut) {
		t.Fatalf("throttled Remove = %v, want ErrTimedOut", err)
	}
	if d := q.ReadState(); d != 1 {
		t.Fatalf("ReadState = %d, want 1 (entry must not be lost)", d)
	}

	// Once the first consumer detaches, capacity frees up.
	close(release)
	<-firstDone
	v, err := q.Remove(context.Background(), 2*time.Second)
	if err != nil || v != 2 {
		t.Fatalf("Remove after detach = %d, %v, want 2", v, err)
	}
}

func TestQueue_RundownReturnsLeftovers(t *testing.T) {
	q := queue.New[int](4)
	for i := 0; i < 3; i++ {
		if err := q.Insert(i); err != nil {
			t.Fatal(err)
		}
	}

	leftovers := q.Rundown()
	if len(leftovers) != 3 {
		t.Fatalf("Rundown returned %d entries, want 3", len(leftovers))
	}
	seen := make(map[int]bool)
	for _, v := range leftovers {
		seen[v] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("entry %d lost during rundown", i)
		}
	}
	if q.ReadState() != 0 {
		t.Errorf("ReadState after rundown = %d, want 0", q.ReadState())
	}

	if err := q.Insert(99); !errors.Is(err, api.ErrPortClosed) {
		t.Errorf("Insert after rundown = %v, want ErrPortClosed", err)
	}
	if _, err := q.Remove(context.Background(), 0); !errors.Is(err, api.ErrPortClosed) {
		t.Errorf("Remove after rundown = %v, want ErrPortClosed", err)
	}
	if again := q.Rundown(); again != nil {
		t.Errorf("second Rundown = %v, want nil", again)
	}
}

func TestQueue_RundownWakesWaiter(t *testing.T) {
	q := queue.New[int](1)
	waiterErr := make(chan error, 1)
	go func() {
		_, err := q.Remove(context.Background(), queue.Forever)
		waiterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	if leftovers := q.Rundown(); len(leftovers) != 0 {
		t.Errorf("Rundown on empty queue returned %d entries", len(leftovers))
	}
	select {
	case err := <-waiterErr:
		if !errors.Is(err, api.ErrPortClosed) {
			t.Fatalf("blocked Remove resolved to %v, want ErrPortClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("rundown did not wake the blocked Remove")
	}
}
