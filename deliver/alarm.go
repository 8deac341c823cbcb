// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"log"
	"sync"
	"time"

	"code.hybscloud.com/ksig"
)

// AlarmTimer schedules a single SIGALRM-equivalent delivery into a
// SigPending, backed by a timerfd. It models the alarm(2)/setitimer(2)
// path: arming replaces any previously pending alarm with a new one (only
// one alarm per task), and a fired timer asserts
// ksig.SIGALRM the fast-path way (no detail record, matching SIGALRM's
// use as a plain notification rather than a queued RT signal).
type AlarmTimer struct {
	tfd *TimerFD

	pending *PendingGuard

	closeOnce sync.Once
	done      chan struct{}
}

// NewAlarmTimer creates a disarmed AlarmTimer that will assert SIGALRM on
// pending when it fires.
//
// pending must be a *PendingGuard so that a Broker or Dispatcher sharing
// the same task's pending state serializes through the same lock as this
// AlarmTimer.
func NewAlarmTimer(pending *PendingGuard) (*AlarmTimer, error) {
	tfd, err := newTimerFD(CLOCK_MONOTONIC, TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	a := &AlarmTimer{tfd: tfd, pending: pending, done: make(chan struct{})}
	go a.run()
	return a, nil
}

// Schedule arms the timer to fire once after d, replacing any previously
// scheduled alarm. A zero or negative d disarms the timer, returning the
// number of seconds remaining on the alarm it replaced (rounded up),
// matching alarm(2)'s "returns seconds left on the previous alarm"
// contract.
func (a *AlarmTimer) Schedule(d time.Duration) (remainingSec int64, err error) {
	remaining, _, err := a.tfd.GetTime()
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return roundUpSeconds(remaining), a.tfd.Disarm()
	}
	return roundUpSeconds(remaining), a.tfd.ArmDuration(d, 0)
}

func roundUpSeconds(ns int64) int64 {
	if ns <= 0 {
		return 0
	}
	return (ns + int64(time.Second) - 1) / int64(time.Second)
}

func (a *AlarmTimer) run() {
	for {
		_, err := a.tfd.Read()
		if err != nil {
			select {
			case <-a.done:
				return
			default:
			}
			log.Printf("deliver: alarm timer read: %v", err)
			continue
		}
		a.pending.SetFast(ksig.SIGALRM)
	}
}

// Close stops the timer and releases the timerfd. Safe to call more than
// once.
func (a *AlarmTimer) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.done)
		err = a.tfd.Close()
	})
	return err
}
