package businessflow

import (
	"sync"

	"github.com/movedocs/tariffworks/utils"
)

// orderLock serializes document regeneration per tariff order. Each lock
// carries a generation counter: every state change that should trigger a
// rebuild bumps the counter, and a regeneration that finishes holding a
// stale generation discards its output instead of persisting it. That way a
// burst of edits collapses into however many rebuilds actually reach the
// front of the queue, never one per edit.
type orderLock struct {
	meta       sync.Mutex // guards generation and waiters
	regen      sync.Mutex // held for the duration of one rebuild
	generation uint64
	waiters    int
}

type orderLockTable struct {
	mu    sync.Mutex
	locks map[uint]*orderLock
}

func newOrderLockTable() *orderLockTable {
	return &orderLockTable{locks: make(map[uint]*orderLock)}
}

func (t *orderLockTable) get(orderID uint) *orderLock {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[orderID]
	if !ok {
		l = &orderLock{}
		t.locks[orderID] = l
	}
	return l
}

// bump records a new pending state change and returns the generation that a
// regeneration must still match at persist time.
func (t *orderLockTable) bump(orderID uint) uint64 {
	l := t.get(orderID)
	l.meta.Lock()
	defer l.meta.Unlock()
	l.generation++
	return l.generation
}

// current returns the latest generation without bumping.
func (t *orderLockTable) current(orderID uint) uint64 {
	l := t.get(orderID)
	l.meta.Lock()
	defer l.meta.Unlock()
	return l.generation
}

// acquire takes the per-order regeneration lock, bounding the number of
// goroutines allowed to queue behind it. Returns false when the queue is
// full; the caller should surface a retryable busy error.
func (t *orderLockTable) acquire(orderID uint) bool {
	l := t.get(orderID)

	l.meta.Lock()
	if l.waiters >= utils.MaxRegenerationWaiters {
		l.meta.Unlock()
		return false
	}
	l.waiters++
	l.meta.Unlock()

	l.regen.Lock()
	return true
}

func (t *orderLockTable) release(orderID uint) {
	l := t.get(orderID)
	l.regen.Unlock()
	l.meta.Lock()
	l.waiters--
	l.meta.Unlock()
}
