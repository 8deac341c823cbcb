// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package abi implements the bidirectional translation between the
// kernel-internal ksig types and the user-visible sigaction/siginfo/
// sigset_t ABI layouts, plus the userspace-pointer copy-out for siginfo.
// User-space memory validation itself is a capability supplied by the VM
// layer (out of scope here); this package consumes it through the
// UserMemory interface rather than implementing an MMU.
package abi

import (
	"encoding/binary"

	"code.hybscloud.com/ksig"
)

// UserSigaction is the user-visible sigaction structure.
// Handler and Sigaction form a discriminated union in the user ABI; the
// discriminator is the SA_SIGINFO bit of Flags.
type UserSigaction struct {
	Handler   uint64 // two-argument handler value when SA_SIGINFO is clear
	Sigaction uint64 // three-argument handler address when SA_SIGINFO is set
	Mask      ksig.SigSet
	Flags     ksig.SigFlags
	Restorer  uint64
}

// ToSigaction converts a UserSigaction supplied by a sigaction(2) caller
// into the kernel-internal Sigaction, applying the ABI conversion rules
// for the Handler field. A zero Restorer is treated as "no restorer".
func ToSigaction(u UserSigaction) ksig.Sigaction {
	var action ksig.SigactionType
	if u.Flags.Contains(ksig.SA_SIGINFO) {
		action = ksig.SaSigaction(u.Sigaction)
	} else {
		action = ksig.SaHandler(ksig.SaHandlerFromABI(u.Handler))
	}
	var restorer *uint64
	if u.Restorer != 0 {
		r := u.Restorer
		restorer = &r
	}
	return ksig.NewSigaction(action, u.Flags, u.Mask, restorer)
}

// FromSigaction converts a kernel-internal Sigaction back into the
// user-visible layout, the inverse of ToSigaction. Round-tripping a value
// through ToSigaction then FromSigaction reproduces the original
// UserSigaction modulo fields with no ksig-side representation: a
// SaSigaction's Handler field and a SaHandler's Sigaction
// field are always reported as 0, matching what a real kernel would
// observe consuming the other half of the union.
func FromSigaction(a ksig.Sigaction) UserSigaction {
	u := UserSigaction{
		Mask:  a.Mask(),
		Flags: a.Flags(),
	}
	if restorer := a.Restorer(); restorer != nil {
		u.Restorer = *restorer
	}
	if a.Action().IsSaHandler() {
		u.Handler = a.Action().Handler().ABIValue()
	} else {
		u.Sigaction = a.Action().FnPtr()
		u.Flags |= ksig.SA_SIGINFO
	}
	return u
}

// SiginfoABISize is the ABI-mandated siginfo envelope size: 128 bytes on
// most platforms, of which the core only requires the first 20
// to be meaningful for the Kill variant.
const SiginfoABISize = 128

// MarshalSiginfo encodes info into the ABI-exact 128-byte siginfo layout.
// Only the Kill variant is populated beyond the common header, matching
// the siginfo union variants this core's SigType specifies.
func MarshalSiginfo(info ksig.SigInfo) [SiginfoABISize]byte {
	var buf [SiginfoABISize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(info.SigNo))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(info.Errno))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(info.SigCode)))
	binary.LittleEndian.PutUint32(buf[12:16], info.Reserved)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(info.SigType.PID()))
	return buf
}

// UnmarshalSiginfo decodes the ABI-exact 128-byte layout back into a
// SigInfo. Only the Kill variant is decoded; future variants (fault addr,
// child status, timer id) would extend the bytes beyond offset 20 the way
// SigType is left open to accommodate.
func UnmarshalSiginfo(buf [SiginfoABISize]byte) ksig.SigInfo {
	sigNo := int32(binary.LittleEndian.Uint32(buf[0:4]))
	errno := int32(binary.LittleEndian.Uint32(buf[4:8]))
	code := ksig.SigCode(int32(binary.LittleEndian.Uint32(buf[8:12])))
	reserved := binary.LittleEndian.Uint32(buf[12:16])
	pid := int32(binary.LittleEndian.Uint32(buf[16:20]))
	return ksig.NewSigInfo(ksig.Signal(sigNo), errno, code, reserved, ksig.Kill(pid))
}

// UserMemory is the capability the VM layer supplies for validating and
// writing into a task's user address space. Implementations must make
// Validate/WriteAt atomic with respect to each other: CopySiginfoToUser
// relies on a successful Validate guaranteeing the following WriteAt
// cannot partially fail.
type UserMemory interface {
	// Validate reports whether [addr, addr+size) lies entirely in the
	// task's user address space and is writable.
	Validate(addr uintptr, size uintptr) bool
	// WriteAt copies src into the validated user range starting at addr.
	WriteAt(addr uintptr, src []byte) error
}

// CopySiginfoToUser validates the destination range and, on success,
// performs a byte-exact copy of info to addr in the task's user address
// space. On validation failure it returns ErrAddressFault and writes
// nothing — copies are never partial.
func CopySiginfoToUser(mem UserMemory, info ksig.SigInfo, addr uintptr) error {
	if !mem.Validate(addr, SiginfoABISize) {
		return ksig.ErrAddressFault
	}
	buf := MarshalSiginfo(info)
	return mem.WriteAt(addr, buf[:])
}
