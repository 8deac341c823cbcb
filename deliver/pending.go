// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"sync"

	"code.hybscloud.com/ksig"
)

// PendingGuard pairs a ksig.SigPending with the single lock that protects
// it. ksig.SigPending's own doc comment states that "every SigPending is
// protected by the owning task's signal lock" — one lock
// shared by every accessor of that instance, not a private lock per
// wrapper. Broker, Dispatcher, and AlarmTimer all take a *PendingGuard
// rather than a bare *ksig.SigPending so that two components (or a test)
// sharing one task's pending state serialize through the same mutex
// instead of racing past each other's independent locks.
type PendingGuard struct {
	mu      sync.Mutex
	pending *ksig.SigPending
}

// NewPendingGuard wraps pending with a lock. The caller must not touch
// pending directly again; all access — including from test code reading
// Signal()/CollectSignal() — must go through the returned guard.
func NewPendingGuard(pending *ksig.SigPending) *PendingGuard {
	return &PendingGuard{pending: pending}
}

// Enqueue locks and forwards to the wrapped SigPending's Enqueue.
func (g *PendingGuard) Enqueue(info ksig.SigInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending.Enqueue(info)
}

// SetFast locks and forwards to the wrapped SigPending's SetFast.
func (g *PendingGuard) SetFast(sig ksig.Signal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending.SetFast(sig)
}

// Signal locks and returns a snapshot of the wrapped SigPending's bitset.
func (g *PendingGuard) Signal() ksig.SigSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending.Signal()
}

// NextSignal locks and forwards to the wrapped SigPending's NextSignal.
func (g *PendingGuard) NextSignal(blocked ksig.SigSet) ksig.Signal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending.NextSignal(blocked)
}

// CollectSignal locks and forwards to the wrapped SigPending's CollectSignal.
func (g *PendingGuard) CollectSignal(sig ksig.Signal) ksig.SigInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending.CollectSignal(sig)
}

// FlushByMask locks and forwards to the wrapped SigPending's FlushByMask.
func (g *PendingGuard) FlushByMask(mask ksig.SigSet) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending.FlushByMask(mask)
}
