package cache

import "sync/atomic"

// Accountant tracks resident-body bytes against a fixed capacity. It does
// not know which entries reserved which bytes; callers pair Reserve calls
// with Free calls. Wait-free: a single CAS loop on an int64, no mutex.
type Accountant struct {
	usedBytes   int64
	capacityBytes int64
}

// NewAccountant returns an Accountant with the given byte capacity.
func NewAccountant(capacityBytes int64) *Accountant {
	return &Accountant{capacityBytes: capacityBytes}
}

// Reserve atomically increments used bytes by n and returns true, unless
// doing so would exceed capacity, in which case it returns false and leaves
// the counter untouched.
func (a *Accountant) Reserve(n int64) bool {
	for {
		cur := atomic.LoadInt64(&a.usedBytes)
		next := cur + n
		if next > a.capacityBytes {
			return false
		}
		if atomic.CompareAndSwapInt64(&a.usedBytes, cur, next) {
			return true
		}
	}
}

// Free decrements used bytes by min(n, usedBytes), never going negative.
func (a *Accountant) Free(n int64) {
	for {
		cur := atomic.LoadInt64(&a.usedBytes)
		dec := n
		if dec > cur {
			dec = cur
		}
		next := cur - dec
		if atomic.CompareAndSwapInt64(&a.usedBytes, cur, next) {
			return
		}
	}
}

// UsedBytes returns the current reserved total, for metrics/tests.
func (a *Accountant) UsedBytes() int64 { return atomic.LoadInt64(&a.usedBytes) }

// CapacityBytes returns the configured budget.
func (a *Accountant) CapacityBytes() int64 { return a.capacityBytes }
