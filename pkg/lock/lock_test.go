package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal(time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := l.Obtain(ctx, "lot:1")
			if err != nil {
				t.Errorf("Obtain: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = lease.Release(ctx)
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxInside)
	}
	if len(l.entries) != 0 {
		t.Fatalf("expected entries to be cleaned up, got %d", len(l.entries))
	}
}

func TestLocal_DistinctKeysDoNotBlock(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)
	ctx := context.Background()

	first, err := l.Obtain(ctx, "lot:1")
	if err != nil {
		t.Fatalf("Obtain lot:1: %v", err)
	}
	defer first.Release(ctx)

	second, err := l.Obtain(ctx, "lot:2")
	if err != nil {
		t.Fatalf("Obtain lot:2 while lot:1 held: %v", err)
	}
	_ = second.Release(ctx)
}

func TestLocal_TimesOut(t *testing.T) {
	l := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	held, err := l.Obtain(ctx, "lot:1")
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}

	if _, err := l.Obtain(ctx, "lot:1"); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}

	_ = held.Release(ctx)
	// double release is harmless
	_ = held.Release(ctx)

	again, err := l.Obtain(ctx, "lot:1")
	if err != nil {
		t.Fatalf("Obtain after release: %v", err)
	}
	_ = again.Release(ctx)
}

func TestLocal_HonoursContext(t *testing.T) {
	l := NewLocal(time.Second)

	held, err := l.Obtain(context.Background(), "k")
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	defer held.Release(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Obtain(ctx, "k")
	if !errors.Is(err, ErrNotObtained) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ErrNotObtained and context.Canceled, got %v", err)
	}
}
