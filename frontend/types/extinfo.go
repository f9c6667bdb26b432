package types

import "fmt"

// AbstractCC is the calling convention of a function type.
type AbstractCC uint8

const (
	// CCFreestanding is the convention of a normal free function.
	CCFreestanding AbstractCC = 0
	// CCC is the foreign C convention.
	CCC AbstractCC = 1
	// CCObjCMethod is the foreign Objective-C method convention.
	CCObjCMethod AbstractCC = 2
	// CCMethod is the convention of an instance method.
	CCMethod AbstractCC = 3
	// CCWitnessMethod dispatches through an opaque protocol witness.
	CCWitnessMethod AbstractCC = 4

	lastAbstractCC = CCWitnessMethod
)

func (cc AbstractCC) String() string {
	switch cc {
	case CCFreestanding:
		return "freestanding"
	case CCC:
		return "cdecl"
	case CCObjCMethod:
		return "objc_method"
	case CCMethod:
		return "method"
	case CCWitnessMethod:
		return "witness_method"
	}
	return fmt.Sprintf("AbstractCC(%d)", cc)
}

// FunctionRepresentation describes how a function value is represented.
type FunctionRepresentation uint8

const (
	// RepThick carries a context pointer for captured state. The default.
	RepThick FunctionRepresentation = 0
	// RepBlock is a thick function boxed as a foreign block.
	RepBlock FunctionRepresentation = 1
	// RepThin needs no context: a bare function pointer.
	RepThin FunctionRepresentation = 2
)

func (r FunctionRepresentation) String() string {
	switch r {
	case RepThick:
		return "thick"
	case RepBlock:
		return "block"
	case RepThin:
		return "thin"
	}
	return fmt.Sprintf("FunctionRepresentation(%d)", r)
}

// ExtInfo packs the per-function-type convention bits. The numeric layout
// is a contract collaborators rely on and must not change:
//
//	bits 0-3  calling convention
//	bits 4-5  representation
//	bit  6    auto-closure
//	bit  7    no-return
type ExtInfo uint16

const (
	extCCMask          ExtInfo = 0xF
	extReprMask        ExtInfo = 0x30
	extReprShift               = 4
	extAutoClosureMask ExtInfo = 0x40
	extNoReturnMask    ExtInfo = 0x80
)

// NewExtInfo packs the given fields. The zero ExtInfo is a freestanding,
// thick, returning, non-auto-closure function.
func NewExtInfo(cc AbstractCC, rep FunctionRepresentation, noReturn, autoClosure bool) ExtInfo {
	if cc > lastAbstractCC {
		fatalf("invalid calling convention %d", cc)
	}
	e := ExtInfo(cc) | ExtInfo(rep)<<extReprShift
	if noReturn {
		e |= extNoReturnMask
	}
	if autoClosure {
		e |= extAutoClosureMask
	}
	return e
}

func (e ExtInfo) CC() AbstractCC { return AbstractCC(e & extCCMask) }
func (e ExtInfo) Representation() FunctionRepresentation {
	return FunctionRepresentation((e & extReprMask) >> extReprShift)
}
func (e ExtInfo) IsNoReturn() bool    { return e&extNoReturnMask != 0 }
func (e ExtInfo) IsAutoClosure() bool { return e&extAutoClosureMask != 0 }
func (e ExtInfo) IsThin() bool        { return e.Representation() == RepThin }
func (e ExtInfo) IsBlock() bool       { return e.Representation() == RepBlock }

// Bits exposes the raw encoding under the documented layout.
func (e ExtInfo) Bits() uint16 { return uint16(e) }

func (e ExtInfo) WithCC(cc AbstractCC) ExtInfo {
	if cc > lastAbstractCC {
		fatalf("invalid calling convention %d", cc)
	}
	return (e &^ extCCMask) | ExtInfo(cc)
}

func (e ExtInfo) WithRepresentation(rep FunctionRepresentation) ExtInfo {
	return (e &^ extReprMask) | ExtInfo(rep)<<extReprShift
}

func (e ExtInfo) WithIsNoReturn(noReturn bool) ExtInfo {
	if noReturn {
		return e | extNoReturnMask
	}
	return e &^ extNoReturnMask
}

func (e ExtInfo) WithIsAutoClosure(autoClosure bool) ExtInfo {
	if autoClosure {
		return e | extAutoClosureMask
	}
	return e &^ extAutoClosureMask
}
