// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/ksig"
	"code.hybscloud.com/zcall"
)

// SignalFD represents a Linux signalfd file descriptor.
// It provides a file descriptor for accepting signals synchronously,
// enabling signal handling via poll/epoll/io_uring.
//
// SignalFD is created with SFD_NONBLOCK and SFD_CLOEXEC by default.
//
// Invariants:
//   - The caller must block the signals with sigprocmask before using signalfd.
//   - Each read returns exactly one rawSignalInfo structure (128 bytes),
//     decoded into a ksig.SigInfo by ReadSigInfo.
type SignalFD struct {
	fd   FD
	mask ksig.SigSet
}

// rawSignalInfo matches struct signalfd_siginfo from the Linux kernel. It
// is the wire format read off the signalfd; ReadSigInfo decodes it into
// the kernel-internal ksig.SigInfo envelope. This is what Linux itself
// hands back from signalfd — a different wire format from the
// sigaction(2)/rt_sigreturn siginfo ABI that package abi marshals.
type rawSignalInfo struct {
	Signo    uint32   // Signal number
	Errno    int32    // Error number (unused)
	Code     int32    // Signal code
	PID      uint32   // PID of sender
	UID      uint32   // UID of sender
	FD       int32    // File descriptor (SIGIO)
	TID      uint32   // Kernel timer ID (POSIX timers)
	Band     uint32   // Band event (SIGIO)
	Overrun  uint32   // Overrun count (POSIX timers)
	Trapno   uint32   // Trap number
	Status   int32    // Exit status or signal (SIGCHLD)
	Int      int32    // Integer sent by sigqueue
	Ptr      uint64   // Pointer sent by sigqueue
	Utime    uint64   // User CPU time (SIGCHLD)
	Stime    uint64   // System CPU time (SIGCHLD)
	Addr     uint64   // Fault address (SIGILL, SIGFPE, SIGSEGV, SIGBUS)
	AddrLsb  uint16   // LSB of address (SIGBUS)
	_        uint16   // Padding
	Syscall  int32    // Syscall number (SIGSYS)
	CallAddr uint64   // Syscall instruction address (SIGSYS)
	Arch     uint32   // Architecture (SIGSYS)
	_        [28]byte // Padding to 128 bytes
}

// toSigInfo translates the kernel's raw signalfd_siginfo into the
// kernel-internal SigInfo envelope: a sender calls into SigPending to
// assert a bit and enqueue a SigInfo. Only the Kill origin is modeled:
// every record, whatever its origin, becomes a Kill SigType carrying
// ssi_pid, with SigCode passed through unchanged.
func (r *rawSignalInfo) toSigInfo() ksig.SigInfo {
	return ksig.NewSigInfo(ksig.Signal(r.Signo), r.Errno, ksig.SigCode(r.Code), 0, ksig.Kill(int32(r.PID)))
}

// signalInfoSize is the size of rawSignalInfo in bytes.
const signalInfoSize = 128

// NewSignalFD creates a new signalfd monitoring the given signal set.
// The signalfd is created with SFD_NONBLOCK | SFD_CLOEXEC flags.
//
// The caller should block the signals in the set using sigprocmask
// before creating the signalfd to prevent default signal handling.
func NewSignalFD(mask ksig.SigSet) (*SignalFD, error) {
	return newSignalFD(mask, SFD_NONBLOCK|SFD_CLOEXEC)
}

func newSignalFD(mask ksig.SigSet, flags uintptr) (*SignalFD, error) {
	// signalfd4 expects the sigset_t size, which is 8 bytes on amd64
	bits := mask.Bits()
	fd, errno := zcall.Signalfd4(
		^uintptr(0), // -1: create new fd
		unsafe.Pointer(&bits),
		unsafe.Sizeof(bits),
		flags,
	)
	if errno != 0 {
		return nil, errFromErrno(errno)
	}
	return &SignalFD{fd: FD(fd), mask: mask}, nil
}

// Fd returns the underlying file descriptor.
// Implements PollFd interface.
func (s *SignalFD) Fd() int {
	return s.fd.Fd()
}

// Close closes the signalfd.
// Implements PollCloser interface.
func (s *SignalFD) Close() error {
	return s.fd.Close()
}

// ReadSigInfo reads the next pending signal and decodes it into the
// kernel-internal ksig.SigInfo envelope.
// Returns iox.ErrWouldBlock if no signal is pending.
func (s *SignalFD) ReadSigInfo() (ksig.SigInfo, error) {
	raw := s.fd.Raw()
	if raw < 0 {
		return ksig.SigInfo{}, ErrClosed
	}
	var info rawSignalInfo
	buf := (*[signalInfoSize]byte)(unsafe.Pointer(&info))[:]
	n, errno := zcall.Read(uintptr(raw), buf)
	if errno != 0 {
		if zcall.Errno(errno) == zcall.EAGAIN {
			return ksig.SigInfo{}, iox.ErrWouldBlock
		}
		return ksig.SigInfo{}, errFromErrno(errno)
	}
	if n != signalInfoSize {
		return ksig.SigInfo{}, ErrInvalidParam
	}
	return info.toSigInfo(), nil
}

// SetMask updates the signal mask monitored by this signalfd.
func (s *SignalFD) SetMask(mask ksig.SigSet) error {
	raw := s.fd.Raw()
	if raw < 0 {
		return ErrClosed
	}
	bits := mask.Bits()
	_, errno := zcall.Signalfd4(
		uintptr(raw),
		unsafe.Pointer(&bits),
		unsafe.Sizeof(bits),
		0, // flags are ignored when updating
	)
	if errno != 0 {
		return errFromErrno(errno)
	}
	s.mask = mask
	return nil
}

// Mask returns the current signal mask.
func (s *SignalFD) Mask() ksig.SigSet {
	return s.mask
}

// signalfd flags
const (
	SFD_CLOEXEC  = 0x80000
	SFD_NONBLOCK = 0x800
)

// Compile-time interface assertions
var (
	_ PollFd     = (*SignalFD)(nil)
	_ PollCloser = (*SignalFD)(nil)
)
