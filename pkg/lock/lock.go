// Package lock provides per-key mutual exclusion used to serialize
// read-modify-write sequences on a single stock lot.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotObtained is returned when a lock could not be acquired in time
var ErrNotObtained = errors.New("lock not obtained")

// Lease is a held lock
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out exclusive leases per key. Distinct keys never block each other.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lease, error)
}

// Local is an in-process keyed mutex
type Local struct {
	wait time.Duration

	mu      sync.Mutex
	entries map[string]*localEntry
}

type localEntry struct {
	slot chan struct{}
	refs int
}

// NewLocal creates an in-process locker; Obtain gives up after wait
func NewLocal(wait time.Duration) *Local {
	return &Local{
		wait:    wait,
		entries: make(map[string]*localEntry),
	}
}

// Obtain blocks until the key is free, the wait elapses or ctx is done
func (l *Local) Obtain(ctx context.Context, key string) (Lease, error) {
	e := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.slot <- struct{}{}:
		return &localLease{locker: l, key: key, entry: e}, nil
	case <-timer.C:
		l.unref(key, e)
		return nil, ErrNotObtained
	case <-ctx.Done():
		l.unref(key, e)
		return nil, errors.Join(ErrNotObtained, ctx.Err())
	}
}

func (l *Local) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

type localLease struct {
	locker *Local
	key    string
	entry  *localEntry
	once   sync.Once
}

func (ll *localLease) Release(context.Context) error {
	ll.once.Do(func() {
		<-ll.entry.slot
		ll.locker.unref(ll.key, ll.entry)
	})
	return nil
}
