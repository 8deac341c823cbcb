// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"code.hybscloud.com/ksig"
)

// Dispatcher sends signals to a specific process instance via pidfd,
// avoiding the PID-reuse race an ordinary kill(2) has: once a Dispatcher
// is bound to a pid, every Kill it issues targets that exact process, even
// if the PID number is later recycled by a different process — kernel
// kill_proc_info's job, done race-free.
//
// Kill also mirrors the send into a local SigPending for callers acting as
// their own signal source (self-signals, tests) without a real kernel
// round-trip; skip this by passing a nil local.
//
// local must be a *PendingGuard (not a bare *ksig.SigPending) so that a
// Broker or AlarmTimer sharing the same task's pending state serializes
// through the same lock as this Dispatcher.
type Dispatcher struct {
	pfd *PidFD

	local *PendingGuard
}

// NewDispatcher opens a pidfd for pid. local may be nil.
func NewDispatcher(pid int, local *PendingGuard) (*Dispatcher, error) {
	pfd, err := NewPidFD(pid)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{pfd: pfd, local: local}, nil
}

// Kill sends sig to the target process via PIDFD_SEND_SIGNAL and, if a
// local SigPending was configured, also asserts it there with a Kill
// SigType carrying the caller-supplied sender pid.
//
// KERNEL_ONLY signals (SIGKILL, SIGSTOP) still route through SendSignal;
// the kernel itself enforces their unblockable/uncatchable nature, this
// type does not special-case them.
func (d *Dispatcher) Kill(sig ksig.Signal, senderPID int32) error {
	if err := d.pfd.SendSignal(int(sig)); err != nil {
		return err
	}
	if d.local != nil {
		info := ksig.NewSigInfo(sig, 0, ksig.SI_USER, 0, ksig.Kill(senderPID))
		d.local.Enqueue(info)
	}
	return nil
}

// PID returns the target process ID as observed at Dispatcher creation.
func (d *Dispatcher) PID() int {
	return d.pfd.PID()
}

// Close releases the underlying pidfd.
func (d *Dispatcher) Close() error {
	return d.pfd.Close()
}
