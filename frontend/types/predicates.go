package types

// IsEqual reports whether two types are semantically the same type,
// ignoring sugar. Canonical nodes are unique per context, so this reduces
// to pointer identity after canonicalization.
func IsEqual(a, b Type) bool {
	return Canonicalize(a).Type == Canonicalize(b).Type
}

// IsSpelledLike reports whether two types are written the same way,
// sugar included. Int? and Optional<Int> are equal but not spelled alike.
func IsSpelledLike(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *BuiltinIntegerType:
		return x.width == b.(*BuiltinIntegerType).width
	case *BuiltinFloatType:
		return x.fpKind == b.(*BuiltinFloatType).fpKind
	case *BuiltinVectorType:
		y := b.(*BuiltinVectorType)
		return x.numElements == y.numElements && IsSpelledLike(x.element, y.element)
	case *AliasType:
		y := b.(*AliasType)
		return x.decl == y.decl && IsSpelledLike(x.underlying, y.underlying)
	case *ParenType:
		return IsSpelledLike(x.underlying, b.(*ParenType).underlying)
	case *ArraySliceType:
		return IsSpelledLike(x.baseType, b.(*ArraySliceType).baseType)
	case *OptionalType:
		return IsSpelledLike(x.baseType, b.(*OptionalType).baseType)
	case *SubstitutedType:
		y := b.(*SubstitutedType)
		return IsSpelledLike(x.original, y.original) && IsSpelledLike(x.replacement, y.replacement)
	case *TupleType:
		y := b.(*TupleType)
		if len(x.elements) != len(y.elements) {
			return false
		}
		for i := range x.elements {
			xe, ye := x.elements[i], y.elements[i]
			if xe.Name != ye.Name || xe.Variadic != ye.Variadic || xe.HasDefault != ye.HasDefault ||
				!IsSpelledLike(xe.Type, ye.Type) {
				return false
			}
		}
		return true
	case *FunctionType:
		y := b.(*FunctionType)
		return x.ext == y.ext && IsSpelledLike(x.input, y.input) && IsSpelledLike(x.result, y.result)
	case *GenericFunctionType:
		y := b.(*GenericFunctionType)
		if x.ext != y.ext || len(x.params) != len(y.params) || len(x.requirements) != len(y.requirements) {
			return false
		}
		for i := range x.params {
			if x.params[i] != y.params[i] {
				return false
			}
		}
		for i := range x.requirements {
			xr, yr := x.requirements[i], y.requirements[i]
			if xr.Kind != yr.Kind || !IsSpelledLike(xr.Subject, yr.Subject) ||
				!IsSpelledLike(xr.Constraint, yr.Constraint) {
				return false
			}
		}
		return IsSpelledLike(x.input, y.input) && IsSpelledLike(x.result, y.result)
	case *NominalType:
		y := b.(*NominalType)
		return x.decl == y.decl && parentSpelledLike(x.parent, y.parent)
	case *ModuleType:
		return x.module == b.(*ModuleType).module
	case *UnboundGenericType:
		y := b.(*UnboundGenericType)
		return x.decl == y.decl && parentSpelledLike(x.parent, y.parent)
	case *BoundGenericType:
		y := b.(*BoundGenericType)
		if x.decl != y.decl || !parentSpelledLike(x.parent, y.parent) || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !IsSpelledLike(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	case *MetatypeType:
		y := b.(*MetatypeType)
		return x.repr == y.repr && IsSpelledLike(x.instance, y.instance)
	case *ExistentialMetatypeType:
		y := b.(*ExistentialMetatypeType)
		return x.repr == y.repr && IsSpelledLike(x.instance, y.instance)
	case *ProtocolCompositionType:
		y := b.(*ProtocolCompositionType)
		if len(x.protocols) != len(y.protocols) {
			return false
		}
		for i := range x.protocols {
			if !IsSpelledLike(x.protocols[i], y.protocols[i]) {
				return false
			}
		}
		return true
	case *LValueType:
		return IsSpelledLike(x.object, b.(*LValueType).object)
	case *InOutType:
		return IsSpelledLike(x.object, b.(*InOutType).object)
	case *UnownedStorageType:
		return IsSpelledLike(x.referent, b.(*UnownedStorageType).referent)
	case *WeakStorageType:
		return IsSpelledLike(x.referent, b.(*WeakStorageType).referent)
	case *DependentMemberType:
		y := b.(*DependentMemberType)
		return x.name == y.name && x.assoc == y.assoc && IsSpelledLike(x.baseType, y.baseType)
	}

	// placeholders, archetypes, type variables and lowered function types
	// only equal themselves
	return false
}

func parentSpelledLike(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return IsSpelledLike(a, b)
}

// Walk visits t and its component types in preorder. Returning false from
// visit prunes the subtree. Handy for printers and diagnostics that need to
// inspect structure without caring about kinds.
func Walk(t Type, visit func(Type) bool) {
	if t == nil || !visit(t) {
		return
	}
	for c := range t.Children() {
		Walk(c, visit)
	}
}
