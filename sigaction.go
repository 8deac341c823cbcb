// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ksig

// saHandlerKind discriminates the four SaHandlerType variants. The numeric
// encoding of the first three matches the user ABI: 0 for default, 1 for
// ignore, 2 for SIG_ERR.
type saHandlerKind uint8

const (
	saHandlerDefault saHandlerKind = iota
	saHandlerIgnore
	saHandlerError
	saHandlerCustomized
)

// SaHandlerType is the two-argument handler disposition: one of SigDefault,
// SigIgnore, SigError, or SigCustomized(address). Construct via the
// corresponding function; the zero value is SigDefault.
type SaHandlerType struct {
	kind saHandlerKind
	addr uint64 // valid iff kind == saHandlerCustomized
}

// SigDefault is the "use the kernel-default disposition" handler variant.
func SigDefault() SaHandlerType { return SaHandlerType{kind: saHandlerDefault} }

// SigIgnore is the "ignore this signal" handler variant.
func SigIgnore() SaHandlerType { return SaHandlerType{kind: saHandlerIgnore} }

// SigError is the SIG_ERR diagnostic variant. It is produced only when
// user space supplies SIG_ERR and is never installed by the kernel;
// SigHandStruct.Set rejects it the same way it rejects a non-default
// disposition on a KernelOnlyMask signal.
func SigError() SaHandlerType { return SaHandlerType{kind: saHandlerError} }

// SigCustomized is the "invoke this user handler address" variant.
func SigCustomized(addr uint64) SaHandlerType {
	return SaHandlerType{kind: saHandlerCustomized, addr: addr}
}

// IsSigDefault reports whether h is the SigDefault variant.
func (h SaHandlerType) IsSigDefault() bool { return h.kind == saHandlerDefault }

// IsSigIgnore reports whether h is the SigIgnore variant.
func (h SaHandlerType) IsSigIgnore() bool { return h.kind == saHandlerIgnore }

// IsSigError reports whether h is the SigError variant.
func (h SaHandlerType) IsSigError() bool { return h.kind == saHandlerError }

// IsSigCustomized reports whether h is the SigCustomized variant.
func (h SaHandlerType) IsSigCustomized() bool { return h.kind == saHandlerCustomized }

// Addr returns the handler address for a customized handler, or 0 for any
// of the three fixed variants.
func (h SaHandlerType) Addr() uint64 {
	if h.kind != saHandlerCustomized {
		return 0
	}
	return h.addr
}

// ABIValue encodes h the way the user ABI's `handler` field expects: 0, 1,
// or 2 for the fixed variants, or the handler address itself otherwise
// (the inverse of the ToSigaction conversion rules).
func (h SaHandlerType) ABIValue() uint64 {
	switch h.kind {
	case saHandlerDefault:
		return 0
	case saHandlerIgnore:
		return 1
	case saHandlerError:
		return 2
	default:
		return h.addr
	}
}

// SaHandlerFromABI decodes a raw user-ABI handler value into a
// SaHandlerType: 0 -> SigDefault, 1 -> SigIgnore, 2 -> SigError (rejected
// at install time), anything else -> SigCustomized.
func SaHandlerFromABI(value uint64) SaHandlerType {
	switch value {
	case 0:
		return SigDefault()
	case 1:
		return SigIgnore()
	case 2:
		return SigError()
	default:
		return SigCustomized(value)
	}
}

// SigactionType discriminates between the two-argument handler form
// (SaHandler) and the three-argument SA_SIGINFO form (SaSigaction, carrying
// a raw function pointer as delivered by the user ABI).
type SigactionType struct {
	isSigaction bool
	handler     SaHandlerType
	fnPtr       uint64
}

// SaHandler wraps a two-argument handler disposition.
func SaHandler(h SaHandlerType) SigactionType {
	return SigactionType{handler: h}
}

// SaSigaction wraps a three-argument (SA_SIGINFO) handler address.
func SaSigaction(fnPtr uint64) SigactionType {
	return SigactionType{isSigaction: true, fnPtr: fnPtr}
}

// IsSaHandler reports whether t is the two-argument handler form.
func (t SigactionType) IsSaHandler() bool {
	return !t.isSigaction
}

// Handler returns the SaHandlerType for a two-argument disposition. Only
// meaningful when IsSaHandler is true.
func (t SigactionType) Handler() SaHandlerType {
	return t.handler
}

// FnPtr returns the raw three-argument handler address. Only meaningful
// when IsSaHandler is false.
func (t SigactionType) FnPtr() uint64 {
	return t.fnPtr
}

// Sigaction is the disposition record bound to a single signal number:
// action, flags, the additional mask to block during handler execution,
// and the restorer trampoline address.
type Sigaction struct {
	action   SigactionType
	flags    SigFlags
	mask     SigSet
	restorer *uint64
}

// NewSigaction builds a Sigaction from its four components.
func NewSigaction(action SigactionType, flags SigFlags, mask SigSet, restorer *uint64) Sigaction {
	return Sigaction{action: action, flags: flags, mask: mask, restorer: restorer}
}

// DefaultSigaction is the zero-value disposition: SaHandler(SigDefault),
// no flags, an empty mask, and no restorer.
func DefaultSigaction() Sigaction {
	return Sigaction{action: SaHandler(SigDefault())}
}

// Action returns the disposition's action.
func (a Sigaction) Action() SigactionType { return a.action }

// Flags returns the disposition's flags.
func (a Sigaction) Flags() SigFlags { return a.flags }

// Mask returns the additional set to block during handler execution.
func (a Sigaction) Mask() SigSet { return a.mask }

// Restorer returns the user-space sigreturn trampoline address, or nil if
// none was set.
func (a Sigaction) Restorer() *uint64 { return a.restorer }

// SetAction replaces the disposition's action wholesale.
func (a *Sigaction) SetAction(action SigactionType) { a.action = action }

// FlagsMut returns a pointer to the flags field for in-place mutation.
func (a *Sigaction) FlagsMut() *SigFlags { return &a.flags }

// MaskMut returns a pointer to the mask field for in-place mutation.
func (a *Sigaction) MaskMut() *SigSet { return &a.mask }

// SetRestorer replaces the restorer trampoline address.
func (a *Sigaction) SetRestorer(restorer *uint64) { a.restorer = restorer }

// Ignore reports whether this disposition results in the signal being
// ignored: either SA_FLAG_IGN is set, or SA_FLAG_DFL is set and
// the action is explicitly SaHandler(SigIgnore). The kernel-default ignore
// set (IgnoreMask) is a separate concern the caller must consult when
// translating a bare SA_FLAG_DFL into concrete behavior; Ignore does not
// look at IgnoreMask itself.
func (a Sigaction) Ignore() bool {
	if a.flags.Contains(SA_FLAG_IGN) {
		return true
	}
	if a.flags.Contains(SA_FLAG_DFL) {
		if a.action.IsSaHandler() && a.action.Handler().IsSigIgnore() {
			return true
		}
	}
	return false
}

// SigHandStruct is the fixed disposition table shared by all tasks of a
// process: entries indexed by sig-1, size _NSIG. Mutation requires the
// containing process's lock (not modeled here; package deliver does not
// use SigHandStruct).
type SigHandStruct struct {
	entries [_NSIG]Sigaction
}

// NewSigHandStruct returns a disposition table with every entry set to
// DefaultSigaction.
func NewSigHandStruct() *SigHandStruct {
	h := &SigHandStruct{}
	for i := range h.entries {
		h.entries[i] = DefaultSigaction()
	}
	return h
}

// Get returns the Sigaction bound to sig, by value. Returns
// DefaultSigaction if sig is invalid.
func (h *SigHandStruct) Get(sig Signal) Sigaction {
	if !sig.Valid() {
		return DefaultSigaction()
	}
	return h.entries[sig-1]
}

// Set installs action as the disposition for sig. Returns ErrInvalidSignal
// if sig is out of range, ErrKernelOnly if sig is in KernelOnlyMask and
// action is anything other than SigDefault, or ErrSigError if action's
// handler is SigError.
func (h *SigHandStruct) Set(sig Signal, action Sigaction) error {
	if !sig.Valid() {
		return ErrInvalidSignal
	}
	if action.action.IsSaHandler() && action.action.Handler().IsSigError() {
		return ErrSigError
	}
	if KernelOnlyMask.Contains(sig) {
		if !(action.action.IsSaHandler() && action.action.Handler().IsSigDefault()) {
			return ErrKernelOnly
		}
	}
	h.entries[sig-1] = action
	return nil
}
