package server

import "sync/atomic"

// Admission control for live connections.
//
// The counter only moves through tryAdmit and release, so it always equals
// the number of admitted connections whose handler has not yet exited.
type gate struct {
	limit int64
	live  atomic.Int64
}

func newGate(limit int) *gate {
	return &gate{limit: int64(limit)}
}

// Claims a slot if the limit has not been reached.
//
// The check and the increment happen in one compare-and-swap, so concurrent
// callers can never push the count past the limit. A refused caller leaves the
// counter untouched.
func (g *gate) tryAdmit() bool {
	for {
		n := g.live.Load()
		if n >= g.limit {
			return false
		}
		if g.live.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Returns a slot. Must be called exactly once per successful tryAdmit.
func (g *gate) release() {
	g.live.Add(-1)
}

// Current number of admitted connections.
func (g *gate) count() int64 {
	return g.live.Load()
}
