package types

import "strconv"

// Kind is the single source of truth for which family a type node belongs
// to. Family membership checks are range checks over the discriminant, so
// the declaration order below is load-bearing and must not be reshuffled.
type Kind uint8

const (
	KindError Kind = iota

	// builtins: KindBuiltinRawPointer..KindBuiltinVector
	KindBuiltinRawPointer
	KindBuiltinNativeObject
	KindBuiltinForeignObject
	KindBuiltinInteger
	KindBuiltinFloat
	KindBuiltinVector

	// sugar: KindAlias..KindOptional, never canonical
	KindAlias
	KindParen
	KindArraySlice
	KindOptional

	KindTuple
	KindFunction
	KindGenericFunction

	// nominal: KindStruct..KindProtocol
	KindStruct
	KindEnum
	KindClass
	KindProtocol
	KindModule

	KindUnboundGeneric
	KindBoundGeneric

	KindMetatype
	KindExistentialMetatype
	KindProtocolComposition

	KindLValue
	KindInOut
	KindUnownedStorage
	KindWeakStorage

	// substitutable: KindGenericParam..KindArchetype
	KindGenericParam
	KindAssociatedType
	KindArchetype

	KindDependentMember
	KindSubstituted
	KindTypeVariable

	KindSILFunction
)

var kindNames = [...]string{
	KindError:               "Error",
	KindBuiltinRawPointer:   "Builtin.RawPointer",
	KindBuiltinNativeObject: "Builtin.NativeObject",
	KindBuiltinForeignObject: "Builtin.ForeignObject",
	KindBuiltinInteger:      "Builtin.Integer",
	KindBuiltinFloat:        "Builtin.Float",
	KindBuiltinVector:       "Builtin.Vector",
	KindAlias:               "Alias",
	KindParen:               "Paren",
	KindArraySlice:          "ArraySlice",
	KindOptional:            "Optional",
	KindTuple:               "Tuple",
	KindFunction:            "Function",
	KindGenericFunction:     "GenericFunction",
	KindStruct:              "Struct",
	KindEnum:                "Enum",
	KindClass:               "Class",
	KindProtocol:            "Protocol",
	KindModule:              "Module",
	KindUnboundGeneric:      "UnboundGeneric",
	KindBoundGeneric:        "BoundGeneric",
	KindMetatype:            "Metatype",
	KindExistentialMetatype: "ExistentialMetatype",
	KindProtocolComposition: "ProtocolComposition",
	KindLValue:              "LValue",
	KindInOut:               "InOut",
	KindUnownedStorage:      "UnownedStorage",
	KindWeakStorage:         "WeakStorage",
	KindGenericParam:        "GenericParam",
	KindAssociatedType:      "AssociatedType",
	KindArchetype:           "Archetype",
	KindDependentMember:     "DependentMember",
	KindSubstituted:         "Substituted",
	KindTypeVariable:        "TypeVariable",
	KindSILFunction:         "SILFunction",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) IsBuiltin() bool {
	return k >= KindBuiltinRawPointer && k <= KindBuiltinVector
}

func (k Kind) IsSugar() bool {
	return k >= KindAlias && k <= KindOptional
}

func (k Kind) IsNominal() bool {
	return k >= KindStruct && k <= KindProtocol
}

// IsSubstitutable reports whether nodes of this kind can appear as keys of a
// SubstitutionMap.
func (k Kind) IsSubstitutable() bool {
	return k >= KindGenericParam && k <= KindArchetype
}

func (k Kind) IsReferenceStorage() bool {
	return k == KindUnownedStorage || k == KindWeakStorage
}

// neverCanonical covers the kinds that merely re-spell another type and so
// can never be their own canonical form.
func (k Kind) neverCanonical() bool {
	return k.IsSugar() || k == KindSubstituted
}
