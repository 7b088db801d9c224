package roomlock

import (
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when the lock for a key cannot be acquired within the
// caller's wait budget.
var ErrBusy = errors.New("roomlock: lock acquisition timed out")

// Keyed serializes writers per string key. Each key gets a one-slot channel
// semaphore; holders of different keys never contend. Entries are refcounted
// and removed as soon as the last waiter releases, so idle rooms cost nothing.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewKeyed creates an empty lock table
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Acquire takes the exclusive lock for key, waiting at most wait. On success
// it returns a release function that must be called on every exit path.
// On timeout it returns ErrBusy and the caller must not retry inline.
func (k *Keyed) Acquire(key string, wait time.Duration) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	// Fast path first: with a zero wait the timer below would race an
	// available semaphore.
	select {
	case e.sem <- struct{}{}:
		return k.release(key, e), nil
	default:
	}

	if wait <= 0 {
		k.put(key, e)
		return nil, ErrBusy
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return k.release(key, e), nil
	case <-timer.C:
		k.put(key, e)
		return nil, ErrBusy
	}
}

func (k *Keyed) release(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.put(key, e)
		})
	}
}

// TryAcquire takes the lock without waiting.
func (k *Keyed) TryAcquire(key string) (func(), bool) {
	release, err := k.Acquire(key, 0)
	return release, err == nil
}

func (k *Keyed) put(key string, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}

// Len reports the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
