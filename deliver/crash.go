// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package deliver

import (
	"code.hybscloud.com/ksig"
	"code.hybscloud.com/ksig/abi"
)

// CrashRecorder stages a crash note for a COREDUMP-masked signal in an
// anonymous, sealable memfd, the way a kernel stages the core's note
// section before handing it to a coredump helper. The recorder refuses to
// stage a signal outside ksig.CoredumpMask: those signals terminate or
// stop a task but never produce a dump.
type CrashRecorder struct {
	mfd *MemFD
}

// NewCrashRecorder creates a sealable memfd named for diagnostics.
func NewCrashRecorder(name string) (*CrashRecorder, error) {
	mfd, err := NewMemFDSealed(name)
	if err != nil {
		return nil, err
	}
	return &CrashRecorder{mfd: mfd}, nil
}

// Record writes info's ABI-exact siginfo envelope to the start of the
// memfd and seals it against further writes and shrinking, producing an
// immutable crash note a coredump helper can read via the fd (or have
// duplicated into it with PidFD.GetFD).
//
// Returns ksig.ErrKernelOnly if sig is not in ksig.CoredumpMask.
func (c *CrashRecorder) Record(info ksig.SigInfo) error {
	sig := ksig.Signal(info.SigNo)
	if !ksig.CoredumpMask.Contains(sig) {
		return ksig.ErrKernelOnly
	}
	if err := c.mfd.Truncate(abi.SiginfoABISize); err != nil {
		return err
	}
	if _, err := c.mfd.Seek(0, SEEK_SET); err != nil {
		return err
	}
	buf := abi.MarshalSiginfo(info)
	if _, err := c.mfd.Write(buf[:]); err != nil {
		return err
	}
	return c.mfd.Seal(F_SEAL_WRITE | F_SEAL_SHRINK | F_SEAL_SEAL)
}

// ReadNote reads back the staged siginfo envelope, seeking to the start of
// the memfd first: Record leaves the file offset at EOF after writing.
func (c *CrashRecorder) ReadNote() (ksig.SigInfo, error) {
	if _, err := c.mfd.Seek(0, SEEK_SET); err != nil {
		return ksig.SigInfo{}, err
	}
	var buf [abi.SiginfoABISize]byte
	if _, err := c.mfd.Read(buf[:]); err != nil {
		return ksig.SigInfo{}, err
	}
	return abi.UnmarshalSiginfo(buf), nil
}

// Fd exposes the underlying memfd for handing off to a coredump helper
// process via SCM_RIGHTS or PidFD.GetFD.
func (c *CrashRecorder) Fd() int {
	return c.mfd.Fd()
}

// Close releases the memfd.
func (c *CrashRecorder) Close() error {
	return c.mfd.Close()
}
