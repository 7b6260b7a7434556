package numbering

import "sync"

// Allocator serializes identifier generation per prefix. Two concurrent
// creations under the same prefix would otherwise both read the same max
// sequence and collide on the unique index at commit; holding the
// per-prefix lock across read-increment-write closes that window for
// in-process writers. The database unique constraint remains the
// backstop for multi-process deployments.
type Allocator struct {
	mu    sync.Mutex
	locks map[string]*prefixLock
}

type prefixLock struct {
	mu   sync.Mutex
	refs int
}

// NewAllocator returns an Allocator ready for use.
func NewAllocator() *Allocator {
	return &Allocator{locks: make(map[string]*prefixLock)}
}

// Do runs fn while holding the lock for prefix. Locks for distinct
// prefixes do not contend with each other.
func (a *Allocator) Do(prefix string, fn func() error) error {
	l := a.acquire(prefix)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		a.release(prefix, l)
	}()
	return fn()
}

func (a *Allocator) acquire(prefix string) *prefixLock {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[prefix]
	if !ok {
		l = &prefixLock{}
		a.locks[prefix] = l
	}
	l.refs++
	return l
}

func (a *Allocator) release(prefix string, l *prefixLock) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(a.locks, prefix)
	}
}
