// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"log"
	"sync"

	"code.hybscloud.com/ksig"
)

// Broker turns a blocked set of kernel signals into ksig.SigInfo records
// posted to a task's SigPending, the way a real kernel's do_signal path
// asserts a bit and enqueues detail under the task's signal lock.
//
// A Broker owns a blocking signalfd (the caller must have already blocked
// the same signals via sigprocmask) and an eventfd used to wake any
// epoll/io_uring-based consumer sharing this process; WakeFd exposes
// that eventfd.
//
// Invariants:
//   - Mask never includes a KERNEL_ONLY signal (ksig.KernelOnlyMask);
//     SIGKILL/SIGSTOP are never delivered through signalfd.
//   - Run must be started exactly once; Close stops it and is idempotent.
type Broker struct {
	sfd  *SignalFD
	wake *EventFD

	pending *PendingGuard

	closeOnce sync.Once
	done      chan struct{}
}

// NewBroker creates a Broker that delivers signals in mask into pending.
// mask must not intersect ksig.KernelOnlyMask; such signals are silently
// dropped from the monitored set rather than rejected outright, mirroring
// a kernel that never lets SIGKILL/SIGSTOP be blocked in the first place.
//
// pending must be a *PendingGuard so that every other component or test
// reading the same task's pending state shares this Broker's lock rather
// than racing past it.
func NewBroker(mask ksig.SigSet, pending *PendingGuard) (*Broker, error) {
	mask = mask.Intersection(ksig.KernelOnlyMask.Complement())

	sfd, err := newSignalFD(mask, SFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wake, err := NewEventFD(0)
	if err != nil {
		_ = sfd.Close()
		return nil, err
	}
	return &Broker{
		sfd:     sfd,
		wake:    wake,
		pending: pending,
		done:    make(chan struct{}),
	}, nil
}

// WakeFd returns the file descriptor an external poller should watch for
// readiness; it becomes readable every time Run posts a new signal.
func (b *Broker) WakeFd() int {
	return b.wake.Fd()
}

// Run blocks reading signals off the signalfd until Close is called. It is
// meant to be launched in its own goroutine:
//
//	go broker.Run()
func (b *Broker) Run() {
	for {
		info, err := b.sfd.ReadSigInfo()
		if err != nil {
			select {
			case <-b.done:
				return
			default:
			}
			log.Printf("deliver: broker signalfd read: %v", err)
			continue
		}
		b.pending.Enqueue(info)

		if err := b.wake.Signal(1); err != nil {
			log.Printf("deliver: broker wake signal: %v", err)
		}
	}
}

// SetMask updates the set of signals monitored by the underlying signalfd.
func (b *Broker) SetMask(mask ksig.SigSet) error {
	mask = mask.Intersection(ksig.KernelOnlyMask.Complement())
	return b.sfd.SetMask(mask)
}

// Close stops Run and releases the signalfd and wake eventfd. Safe to call
// more than once.
func (b *Broker) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.sfd.Close()
		if werr := b.wake.Close(); err == nil {
			err = werr
		}
	})
	return err
}
