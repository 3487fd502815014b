package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
)

// keyedMutex hands out one exclusive lock per key. Waiters give up after
// timeout or when ctx is done. An entry lives only while someone holds or
// waits for its key.
type keyedMutex[K comparable] struct {
	mu      sync.Mutex
	locks   map[K]*keyedEntry
	timeout time.Duration
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

func newKeyedMutex[K comparable](timeout time.Duration) *keyedMutex[K] {
	return &keyedMutex[K]{locks: make(map[K]*keyedEntry), timeout: timeout}
}

func (k *keyedMutex[K]) acquire(key K) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *keyedMutex[K]) release(key K, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 && k.locks[key] == e {
		delete(k.locks, key)
	}
}

// Lock returns the release func for key.
func (k *keyedMutex[K]) Lock(ctx context.Context, key K) (func(), error) {
	e := k.acquire(key)

	var expired <-chan time.Time
	if k.timeout > 0 {
		timer := time.NewTimer(k.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				k.release(key, e)
			})
		}, nil
	case <-expired:
		k.release(key, e)
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex[K]) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
