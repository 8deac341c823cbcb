// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

// SigQueue is a dynamically-sized, insertion-ordered sequence of SigInfo
// records. All operations are O(n) in queue length; queues are bounded in
// practice (tens of entries) so no index or tree structure is justified
// The zero value is an empty, usable queue.
type SigQueue struct {
	q []SigInfo
}

// NewSigQueue returns an empty SigQueue pre-sized for capacity entries.
func NewSigQueue(capacity int) *SigQueue {
	return &SigQueue{q: make([]SigInfo, 0, capacity)}
}

// Len returns the number of entries currently queued.
func (q *SigQueue) Len() int {
	return len(q.q)
}

// Enqueue appends info to the queue, preserving insertion order.
func (q *SigQueue) Enqueue(info SigInfo) {
	q.q = append(q.q, info)
}

// Find performs a linear scan for the first entry whose SigNo matches sig.
// Returns the entry and a bool that is true iff at least two matches
// exist, without removing anything.
func (q *SigQueue) Find(sig Signal) (*SigInfo, bool) {
	stillPending := false
	var found *SigInfo
	for i := range q.q {
		if q.q[i].sig() != sig {
			continue
		}
		if found != nil {
			stillPending = true
			break
		}
		found = &q.q[i]
	}
	return found, stillPending
}

// FindAndDelete removes exactly the first entry whose SigNo matches sig,
// in a single pass, and reports whether a second match was observed before
// removal: at most one entry is removed per call.
func (q *SigQueue) FindAndDelete(sig Signal) (removed *SigInfo, stillPending bool) {
	out := q.q[:0:0]
	found := false
	for i := range q.q {
		if q.q[i].sig() != sig {
			out = append(out, q.q[i])
			continue
		}
		if !found {
			info := q.q[i]
			removed = &info
			found = true
			continue // the one entry we drop
		}
		stillPending = true
		out = append(out, q.q[i])
	}
	q.q = out
	return removed, stillPending
}

// flushByMask removes every entry whose signal number is a member of mask,
// in a single pass. Does not touch the caller's bitset; see
// SigPending.FlushByMask for the paired operation, which leaves bitset
// clearing as an explicit, documented open question.
func (q *SigQueue) flushByMask(mask SigSet) {
	out := q.q[:0:0]
	for i := range q.q {
		if mask.Contains(q.q[i].sig()) {
			continue
		}
		out = append(out, q.q[i])
	}
	q.q = out
}
