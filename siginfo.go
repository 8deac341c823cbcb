// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

// SigType is the tagged variant of signal-specific detail carried by a
// SigInfo. Kill is the only variant specified here; the type is open for
// future extension (fault address, child status, timer id) the way the
// source leaves siginfo's union open beyond the kill-origin case.
type SigType struct {
	kind sigTypeKind
	pid  int32
}

type sigTypeKind uint8

const sigTypeKill sigTypeKind = 0

// Kill constructs the SigType variant carrying the sender's process id, as
// produced by kill(2)/tgkill(2) delivery.
func Kill(pid int32) SigType {
	return SigType{kind: sigTypeKill, pid: pid}
}

// PID returns the sender pid carried by a Kill-variant SigType. Returns 0
// for any other (currently nonexistent) variant.
func (t SigType) PID() int32 {
	if t.kind != sigTypeKill {
		return 0
	}
	return t.pid
}

// SigInfo is the delivery-time envelope describing a pending signal: its
// number, originating cause, source identity, and an errno slot. Layout is
// fixed so that it can be copied byte-exactly to the user-ABI siginfo
// envelope (see package abi); the Reserved field pads to alignment and
// carries no meaning of its own.
//
// Lifecycle: constructed by the sender, owned by SigQueue while pending,
// copied by value into kernel-stack locals on collection, then copied to
// user space by the dispatcher.
type SigInfo struct {
	SigNo    int32
	SigCode  SigCode
	Errno    int32
	Reserved uint32
	SigType  SigType
}

// NewSigInfo constructs a SigInfo. sig must be Valid; callers that accept
// unchecked signal numbers should validate before calling this.
func NewSigInfo(sig Signal, errno int32, code SigCode, reserved uint32, typ SigType) SigInfo {
	return SigInfo{
		SigNo:    int32(sig),
		SigCode:  code,
		Errno:    errno,
		Reserved: reserved,
		SigType:  typ,
	}
}

// sig returns the SigInfo's signal number as a Signal.
func (i SigInfo) sig() Signal {
	return Signal(i.SigNo)
}
