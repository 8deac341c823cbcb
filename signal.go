// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ksig implements the in-kernel POSIX signal delivery core: per-process
// disposition tables (Sigaction/SigHandStruct), per-task pending-signal state
// with a bitset fast path and a queued slow path (SigPending/SigQueue), and
// the next_signal/collect_signal selection and dequeue operations that drive
// delivery. The architecture-specific trampoline, the scheduler, and syscall
// entry/exit wiring are external collaborators and are not implemented here.
package ksig

import "math/bits"

// Signal is a POSIX signal number in the range [1, _NSIG]. The zero value,
// Invalid, is a sentinel meaning "no signal".
type Signal int32

// Invalid is the sentinel signal number returned when no signal is pending
// or selectable.
const Invalid Signal = 0

// _NSIG is the highest representable signal number. Signals 1..31 are the
// POSIX-standard assignments; 32..64 are reserved for future real-time use
// and are not specially handled by this core.
const _NSIG = 64

// Valid reports whether sig is in the representable range [1, _NSIG].
func (sig Signal) Valid() bool {
	return sig >= 1 && sig <= _NSIG
}

// bit returns the SigSet bit index for sig: signal n occupies bit (n-1).
func (sig Signal) bit() uint64 {
	return 1 << uint(sig-1)
}

// IntoSigSet returns the singleton SigSet containing sig, or the empty set
// if sig is not Valid.
func (sig Signal) IntoSigSet() SigSet {
	if !sig.Valid() {
		return 0
	}
	return SigSet(sig.bit())
}

// Standard POSIX signal numbers. 32..64 are reserved for real-time use and
// carry no symbolic name here.
const (
	SIGHUP    Signal = 1
	SIGINT    Signal = 2
	SIGQUIT   Signal = 3
	SIGILL    Signal = 4
	SIGTRAP   Signal = 5
	SIGABRT   Signal = 6 // a.k.a. SIGIOT
	SIGBUS    Signal = 7
	SIGFPE    Signal = 8
	SIGKILL   Signal = 9
	SIGUSR1   Signal = 10
	SIGSEGV   Signal = 11
	SIGUSR2   Signal = 12
	SIGPIPE   Signal = 13
	SIGALRM   Signal = 14
	SIGTERM   Signal = 15
	SIGSTKFLT Signal = 16
	SIGCHLD   Signal = 17
	SIGCONT   Signal = 18
	SIGSTOP   Signal = 19
	SIGTSTP   Signal = 20
	SIGTTIN   Signal = 21
	SIGTTOU   Signal = 22
	SIGURG    Signal = 23
	SIGXCPU   Signal = 24
	SIGXFSZ   Signal = 25
	SIGVTALRM Signal = 26
	SIGPROF   Signal = 27
	SIGWINCH  Signal = 28
	SIGIO     Signal = 29 // a.k.a. SIGPOLL
	SIGPWR    Signal = 30
	SIGSYS    Signal = 31
)

// SigSet is a fixed 64-bit signal set. Bit (n-1) represents signal n. Only
// the low 64 bits are ever meaningful; there is no signal 65 and beyond.
type SigSet uint64

// Union returns the union of s and other.
func (s SigSet) Union(other SigSet) SigSet {
	return s | other
}

// Intersection returns the intersection of s and other.
func (s SigSet) Intersection(other SigSet) SigSet {
	return s & other
}

// Complement returns the bitwise complement of s, restricted to the low
// 64 bits (which is all of them, since SigSet is itself 64 bits wide).
func (s SigSet) Complement() SigSet {
	return ^s
}

// Contains reports whether sig is a member of s. Returns false for an
// invalid signal number rather than panicking, since membership tests are
// commonly run against untrusted input.
func (s SigSet) Contains(sig Signal) bool {
	if !sig.Valid() {
		return false
	}
	return s&SigSet(sig.bit()) != 0
}

// Add returns s with sig added. No-op if sig is invalid.
func (s SigSet) Add(sig Signal) SigSet {
	if !sig.Valid() {
		return s
	}
	return s | SigSet(sig.bit())
}

// Remove returns s with sig removed. No-op if sig is invalid.
func (s SigSet) Remove(sig Signal) SigSet {
	if !sig.Valid() {
		return s
	}
	return s &^ SigSet(sig.bit())
}

// Empty reports whether s has no members.
func (s SigSet) Empty() bool {
	return s == 0
}

// Count returns the number of signals present in s.
func (s SigSet) Count() int {
	n := 0
	for x := uint64(s); x != 0; x &= x - 1 {
		n++
	}
	return n
}

// FromBitsTruncate builds a SigSet from a raw bitmask, silently discarding
// any bits beyond the low 64 (a no-op on a 64-bit word, but kept for parity
// with the wider sigset_t the user ABI may supply on some platforms).
func FromBitsTruncate(bits uint64) SigSet {
	return SigSet(bits)
}

// Bits returns the raw 64-bit word backing s.
func (s SigSet) Bits() uint64 {
	return uint64(s)
}

// lowestSet returns the lowest-numbered signal present in s, or Invalid if
// s is empty. Signal n is the lowest-numbered member iff bit (n-1) is the
// least significant set bit of s: this is the find_first_zero_bit(~x)
// trick from the original, spelled with bits.TrailingZeros64.
func (s SigSet) lowestSet() Signal {
	if s == 0 {
		return Invalid
	}
	return Signal(bits.TrailingZeros64(uint64(s)) + 1)
}

// SigFlags carries the SA_* bits attached to a Sigaction.
type SigFlags uint32

const (
	// SA_FLAG_IGN marks the disposition as explicitly ignored.
	SA_FLAG_IGN SigFlags = 1 << iota
	// SA_FLAG_DFL marks the disposition as explicitly default; combined
	// with a SigIgnore handler this means "default, and the default
	// happens to be ignore" (Sigaction.Ignore case b).
	SA_FLAG_DFL
	// SA_RESTART requests that an interrupted slow syscall be restarted
	// after the handler returns, rather than failing with EINTR.
	SA_RESTART
	// SA_NODEFER prevents the signal from being added to its own mask
	// during handler execution, allowing the handler to be re-entered.
	SA_NODEFER
	// SA_RESETHAND resets the disposition to default before invoking the
	// handler (one-shot handler semantics).
	SA_RESETHAND
	// SA_SIGINFO selects the three-argument handler form and the
	// siginfo/ucontext ABI discriminator.
	SA_SIGINFO
	// SA_ONSTACK requests the handler run on the alternate signal stack.
	SA_ONSTACK
)

// Contains reports whether all bits of other are set in f.
func (f SigFlags) Contains(other SigFlags) bool {
	return f&other == other
}

// SigCode tags the origin of a SigInfo.
type SigCode int32

const (
	SI_USER    SigCode = 0  // sent via kill(2)/raise(2) by a user process
	SI_KERNEL  SigCode = 1  // sent by the kernel itself
	SI_QUEUE   SigCode = 2  // sent via sigqueue(3)
	SI_TIMER   SigCode = 3  // generated by a POSIX timer expiry
	SI_MESGQ   SigCode = 4  // generated by a message arriving on an empty queue
	SI_ASYNCIO SigCode = 5  // generated by completion of an asynchronous I/O request
	SI_TKILL   SigCode = 6  // sent via tgkill(2)
	SI_FAULT   SigCode = -1 // synchronous fault (SIGILL/SIGFPE/SIGSEGV/SIGBUS/SIGTRAP/SIGSYS)
)

// defaultDisposition classifies a signal's kernel-default behavior when no
// handler is installed: terminate, core-dump, stop, continue, or ignore.
type defaultDisposition uint8

const (
	dispTerminate defaultDisposition = iota
	dispCoredump
	dispStop
	dispContinue
	dispIgnore
)

// KernelOnlyMask contains SIGKILL and SIGSTOP: signals that can never be
// caught, blocked, or ignored. Enforced at sigaction-install time by
// syscall glue; this core only exposes the mask.
const KernelOnlyMask = SigSet(1<<(SIGSTOP-1) | 1<<(SIGKILL-1))

// StopMask contains the signals whose kernel default is to stop the
// process: SIGSTOP, SIGTSTP, SIGTTIN, SIGTTOU.
const StopMask = SigSet(1<<(SIGSTOP-1) | 1<<(SIGTSTP-1) | 1<<(SIGTTIN-1) | 1<<(SIGTTOU-1))

// CoredumpMask contains the signals whose kernel default is to terminate
// with a core dump. This mask is authoritative over IgnoreMask for the
// five signals both masks list (an open question: the source material
// lists SIGFPE/SIGSEGV/SIGBUS/SIGTRAP/SIGSYS in both masks, which
// contradicts POSIX; this core resolves the ambiguity in favor of
// CoredumpMask and does not propagate it further).
const CoredumpMask = SigSet(1<<(SIGQUIT-1) | 1<<(SIGILL-1) | 1<<(SIGTRAP-1) | 1<<(SIGABRT-1) |
	1<<(SIGFPE-1) | 1<<(SIGSEGV-1) | 1<<(SIGBUS-1) | 1<<(SIGSYS-1) | 1<<(SIGXCPU-1) | 1<<(SIGXFSZ-1))

// IgnoreMask contains the default-ignored signals: SIGCONT, SIGCHLD, SIGIO,
// SIGURG, SIGWINCH. The source additionally lists SIGFPE/SIGSEGV/SIGBUS/
// SIGTRAP/SIGSYS here, overlapping CoredumpMask; this core does not include
// them in IgnoreMask (see CoredumpMask doc).
const IgnoreMask = SigSet(1<<(SIGCONT-1) | 1<<(SIGCHLD-1) | 1<<(SIGIO-1) | 1<<(SIGURG-1) | 1<<(SIGWINCH-1))

// defaultDispositionTable maps each signal number (index sig-1) to its
// kernel-default disposition when no handler is installed.
var defaultDispositionTable = func() [_NSIG]defaultDisposition {
	var t [_NSIG]defaultDisposition
	for i := range t {
		t[i] = dispTerminate
	}
	for sig := Signal(1); sig <= _NSIG; sig++ {
		switch {
		case StopMask.Contains(sig):
			t[sig-1] = dispStop
		case CoredumpMask.Contains(sig):
			t[sig-1] = dispCoredump
		case IgnoreMask.Contains(sig):
			t[sig-1] = dispIgnore
		}
	}
	t[SIGCONT-1] = dispContinue
	return t
}()

// DefaultDisposition reports the kernel-default disposition for sig as one
// of "terminate", "core-dump", "stop", "continue", or "ignore". Returns
// "terminate" for an invalid signal number.
func DefaultDisposition(sig Signal) string {
	if !sig.Valid() {
		return "terminate"
	}
	switch defaultDispositionTable[sig-1] {
	case dispCoredump:
		return "core-dump"
	case dispStop:
		return "stop"
	case dispContinue:
		return "continue"
	case dispIgnore:
		return "ignore"
	default:
		return "terminate"
	}
}
