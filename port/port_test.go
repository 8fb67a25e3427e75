package port_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-iocp/api"
	"github.com/momentics/hioload-iocp/pool"
	"github.com/momentics/hioload-iocp/port"
	"github.com/momentics/hioload-iocp/queue"
)

// fakeNative is an externally owned completion record that counts its
// release-hook invocations.
type fakeNative struct {
	c        api.Completion
	releases atomic.Int32
}

func (f *fakeNative) Completion() api.Completion { return f.c }
func (f *fakeNative) Release()                   { f.releases.Add(1) }

func isolatedPool(opts ...pool.Option) *pool.PacketPool {
	return pool.NewPacketPool(append([]pool.Option{pool.WithWorkers(1)}, opts...)...)
}

func TestPort_PostRemoveTuple(t *testing.T) {
	p := port.New(port.WithConcurrency(1), port.WithPool(isolatedPool()))
	if err := p.Post(7, 0x10, api.StatusSuccess, 42); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	c, err := p.Remove(context.Background(), queue.Forever)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	want := api.Completion{KeyContext: 7, ApcContext: 0x10, Status: api.StatusSuccess, Information: 42}
	if c != want {
		t.Fatalf("Remove = %+v, want %+v", c, want)
	}
}

func TestPort_RoundTripSet(t *testing.T) {
	const n = 64
	p := port.New(port.WithConcurrency(n), port.WithPool(isolatedPool()))

	for i := 0; i < n; i++ {
		if err := p.Post(uint64(i), uint64(i)<<8, api.Status(i%3), uint64(i)*10); err != nil {
			t.Fatalf("Post %d failed: %v", i, err)
		}
	}
	if d := p.Depth(); d != n {
		t.Fatalf("Depth = %d, want %d", d, n)
	}

	var mu sync.Mutex
	got := make(map[api.Completion]bool, n)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				c, err := p.Remove(context.Background(), 0)
				if err != nil {
					return // drained
				}
				mu.Lock()
				if got[c] {
					t.Errorf("completion %+v delivered twice", c)
				}
				got[c] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(got) != n {
		t.Fatalf("removed %d distinct completions, want %d", len(got), n)
	}
	for i := 0; i < n; i++ {
		want := api.Completion{
			KeyContext:  uint64(i),
			ApcContext:  uint64(i) << 8,
			Status:      api.Status(i % 3),
			Information: uint64(i) * 10,
		}
		if !got[want] {
			t.Errorf("completion %+v posted but never removed", want)
		}
	}
}

func TestPort_EmptyPoll(t *testing.T) {
	p := port.New(port.WithPool(isolatedPool()))
	if _, err := p.Remove(context.Background(), 0); !errors.Is(err, api.ErrTimedOut) {
		t.Fatalf("poll on empty port = %v, want ErrTimedOut", err)
	}
}

func TestPort_QuotaExhaustion(t *testing.T) {
	pp := isolatedPool(pool.WithLedger(pool.NewLedger(0)))
	p := port.New(port.WithPool(pp))

	if err := p.Post(1, 2, 3, 4); !errors.Is(err, api.ErrInsufficientResources) {
		t.Fatalf("Post = %v, want ErrInsufficientResources", err)
	}
	if d := p.Depth(); d != 0 {
		t.Fatalf("failed Post mutated the queue: depth = %d", d)
	}
	// Uncharged posting still works under ledger pressure.
	if err := p.PostUncharged(1, 2, 3, 4); err != nil {
		t.Fatalf("PostUncharged = %v", err)
	}
	if d := p.Depth(); d != 1 {
		t.Fatalf("depth = %d, want 1", d)
	}
}

func TestPort_NativeReleaseOnRemove(t *testing.T) {
	p := port.New(port.WithPool(isolatedPool()))
	rec := &fakeNative{c: api.Completion{KeyContext: 5, Status: api.Status(-7), Information: 99}}

	if err := p.PostNative(rec); err != nil {
		t.Fatalf("PostNative failed: %v", err)
	}
	c, err := p.Remove(context.Background(), queue.Forever)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if c != rec.c {
		t.Fatalf("Remove = %+v, want %+v", c, rec.c)
	}
	if n := rec.releases.Load(); n != 1 {
		t.Fatalf("native record released %d times, want exactly 1", n)
	}
}

func TestPort_TeardownDrainsExactlyOnce(t *testing.T) {
	led := pool.NewLedger(1 << 20)
	// Depth 0 disables the cache tiers: every posted packet is a
	// quota-charged heap allocation, so the ledger exposes leaks.
	pp := isolatedPool(pool.WithLedger(led), pool.WithMaxDepth(0))
	p := port.New(port.WithPool(pp))

	for i := 0; i < 3; i++ {
		if err := p.Post(uint64(i), 0, 0, 0); err != nil {
			t.Fatalf("Post %d failed: %v", i, err)
		}
	}
	rec := &fakeNative{}
	if err := p.PostNative(rec); err != nil {
		t.Fatalf("PostNative failed: %v", err)
	}

	p.Rundown()
	if p.State() != port.StateDestroyed {
		t.Fatalf("state after rundown = %v, want destroyed", p.State())
	}

	st := pp.Stats()
	if st.QuotaCharged != 3 || st.QuotaReturned != 3 {
		t.Errorf("quota charged/returned = %d/%d, want 3/3", st.QuotaCharged, st.QuotaReturned)
	}
	if led.Used() != 0 {
		t.Errorf("ledger not balanced after teardown: used = %d", led.Used())
	}
	if n := rec.releases.Load(); n != 1 {
		t.Errorf("native record released %d times during teardown, want 1", n)
	}

	if err := p.Post(9, 9, 9, 9); !errors.Is(err, api.ErrPortClosed) {
		t.Errorf("Post after rundown = %v, want ErrPortClosed", err)
	}
	if err := p.PostNative(&fakeNative{}); !errors.Is(err, api.ErrPortClosed) {
		t.Errorf("PostNative after rundown = %v, want ErrPortClosed", err)
	}
	if _, err := p.Remove(context.Background(), 0); !errors.Is(err, api.ErrPortClosed) {
		t.Errorf("Remove after rundown = %v, want ErrPortClosed", err)
	}

	// Second rundown is a no-op: release counts stay put.
	p.Rundown()
	if n := rec.releases.Load(); n != 1 {
		t.Errorf("second rundown re-released the native record (%d)", n)
	}
}

func TestPort_RundownWakesBlockedRemove(t *testing.T) {
	p := port.New(port.WithPool(isolatedPool()))
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Remove(context.Background(), queue.Forever)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	p.Rundown()
	select {
	case err := <-errCh:
		if !errors.Is(err, api.ErrPortClosed) {
			t.Fatalf("blocked Remove resolved to %v, want ErrPortClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("rundown did not wake the blocked Remove")
	}
}
