// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

import "errors"

// Error definitions for ksig operations.
// These mirror the error kinds a syscall-glue caller needs to distinguish:
// an invalid signal number or an attempt to catch an uncatchable signal is
// InvalidArgument-shaped, a failed user-pointer validation is
// AddressFault-shaped, and a failed queue-entry allocation is NoMemory-shaped.
var (
	// ErrInvalidSignal indicates a signal number outside [1, _NSIG].
	ErrInvalidSignal = errors.New("ksig: invalid signal number")

	// ErrKernelOnly indicates an attempt to catch, block, or ignore
	// a signal in the KERNEL_ONLY mask (SIGKILL, SIGSTOP).
	ErrKernelOnly = errors.New("ksig: signal cannot be caught, blocked, or ignored")

	// ErrSigError indicates the caller attempted to install SIG_ERR,
	// which is a diagnostic sentinel and is never installed by the kernel.
	ErrSigError = errors.New("ksig: SIG_ERR is not an installable disposition")

	// ErrAddressFault indicates a user-space pointer failed validation
	// during a siginfo copy-out.
	ErrAddressFault = errors.New("ksig: user address fault")

	// ErrNoMemory indicates a queue-entry allocation failed on enqueue.
	// Callers should fall back to a fast-path assertion if the signal is
	// already pending, and otherwise report the error upward.
	ErrNoMemory = errors.New("ksig: no memory for queue entry")
)
