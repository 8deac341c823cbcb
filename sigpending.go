// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

// SigPending is the pair (bitset of asserted signals, queue of detail
// records) that represents one task's pending-signal state. Central
// invariant: signal.bit(n-1) is set iff queue contains at least one
// SigInfo with SigNo == n, or n was asserted via a fast-path send.
//
// Every SigPending is protected by the owning task's signal lock in real
// use (a spinlock disabling interrupts on the local core). This type
// itself does not embed a lock — callers (package deliver) take one
// around every mutator, matching the source's "the lock lives one level
// up" design.
type SigPending struct {
	signal SigSet
	queue  SigQueue
}

// NewSigPending returns an empty SigPending.
func NewSigPending() *SigPending {
	return &SigPending{}
}

// Signal returns the current asserted-signal bitset.
func (p *SigPending) Signal() SigSet {
	return p.signal
}

// SignalMut returns a pointer to the bitset field for direct mutation
// (e.g. by sigprocmask bookkeeping external to this core).
func (p *SigPending) SignalMut() *SigSet {
	return &p.signal
}

// Queue returns the detail queue by reference.
func (p *SigPending) Queue() *SigQueue {
	return &p.queue
}

// Enqueue appends info to the queue and sets the corresponding bit. No-op
// if info's signal number is invalid.
func (p *SigPending) Enqueue(info SigInfo) {
	sig := info.sig()
	if !sig.Valid() {
		return
	}
	p.queue.Enqueue(info)
	p.signal = p.signal.Add(sig)
}

// SetFast asserts sig via the fast path: the bit is set without enqueuing
// a detail record. Valid for classical (non-RT) signals whose detail is
// uninteresting.
func (p *SigPending) SetFast(sig Signal) {
	if !sig.Valid() {
		return
	}
	p.signal = p.signal.Add(sig)
}

// NextSignal computes ready = signal ∩ ¬blocked and returns the
// numerically lowest signal in ready, or Invalid if ready is empty. Pure
// function of the snapshot; performs no mutation.
//
// Smaller-numbered signals have priority: SIGKILL (9) and SIGSTOP (19)
// being low-numbered ensures they preempt catchable signals queued later.
func (p *SigPending) NextSignal(blocked SigSet) Signal {
	ready := p.signal.Intersection(blocked.Complement())
	return ready.lowestSet()
}

// CollectSignal removes the first SigInfo in the queue whose SigNo == sig
// and clears the bit if no further entries with that SigNo remain. If the
// queue holds no entry for sig (a fast-path-only assertion, or a
// programming error calling collect on a signal whose bit was never set),
// a synthesized default SigInfo is returned and the bit is cleared
// regardless: this never panics in release builds.
func (p *SigPending) CollectSignal(sig Signal) SigInfo {
	info, stillPending := p.queue.FindAndDelete(sig)
	if !stillPending {
		p.signal = p.signal.Remove(sig)
	}
	if info != nil {
		return *info
	}
	return NewSigInfo(sig, 0, SI_USER, 0, Kill(0))
}

// FlushByMask removes every queue entry whose signal number is a member of
// mask. Does NOT modify the bitset — this is left as an explicit open
// question and resolved here as "queue purge only, bitset preserved" so
// that a fast-path assertion recorded before the flush remains visible to
// NextSignal afterward. Callers that want a full purge should additionally
// clear mask from SignalMut() themselves.
func (p *SigPending) FlushByMask(mask SigSet) {
	p.queue.flushByMask(mask)
}
