// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

import "sync/atomic"

// SignalStruct ties a process (or thread group) to its disposition table.
// Handler is shared so that every task of a process observes a single
// SigHandStruct; Cnt is a free-running reference/use counter whose exact
// semantics are owned by the process-management layer, not this core.
type SignalStruct struct {
	cnt     atomic.Int64
	handler *SigHandStruct
}

// NewSignalStruct returns a SignalStruct with a fresh, default-initialized
// SigHandStruct and a zero use count.
func NewSignalStruct() *SignalStruct {
	return &SignalStruct{handler: NewSigHandStruct()}
}

// Handler returns the shared disposition table.
func (s *SignalStruct) Handler() *SigHandStruct {
	return s.handler
}

// Cnt returns the current value of the use counter.
func (s *SignalStruct) Cnt() int64 {
	return s.cnt.Load()
}

// IncRef atomically increments the use counter, as fork would when a new
// thread joins the thread group.
func (s *SignalStruct) IncRef() int64 {
	return s.cnt.Add(1)
}

// DecRef atomically decrements the use counter, as exit would when a
// thread leaves the thread group. Returns the post-decrement value; the
// caller (process-management layer) is responsible for deciding whether a
// value of zero means the SigHandStruct can be torn down.
func (s *SignalStruct) DecRef() int64 {
	return s.cnt.Add(-1)
}
