package types

import (
	"github.com/cottand/sable/frontend/decls"
)

// ErrorType returns the context's error sentinel.
func (ctx *TypeContext) ErrorType() Type { return ctx.errorTy }

func (ctx *TypeContext) BuiltinRawPointer() Type {
	fp := ctx.fingerprint(KindBuiltinRawPointer).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool { return t.Kind() == KindBuiltinRawPointer },
		func() Type {
			n := &BuiltinRawPointerType{}
			ctx.initBase(&n.typeBase, n, KindBuiltinRawPointer, 0, ArenaPermanent, true)
			return n
		})
}

func (ctx *TypeContext) BuiltinNativeObject() Type {
	fp := ctx.fingerprint(KindBuiltinNativeObject).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool { return t.Kind() == KindBuiltinNativeObject },
		func() Type {
			n := &BuiltinNativeObjectType{}
			ctx.initBase(&n.typeBase, n, KindBuiltinNativeObject, 0, ArenaPermanent, true)
			return n
		})
}

func (ctx *TypeContext) BuiltinForeignObject() Type {
	fp := ctx.fingerprint(KindBuiltinForeignObject).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool { return t.Kind() == KindBuiltinForeignObject },
		func() Type {
			n := &BuiltinForeignObjectType{}
			ctx.initBase(&n.typeBase, n, KindBuiltinForeignObject, 0, ArenaPermanent, true)
			return n
		})
}

func (ctx *TypeContext) BuiltinInteger(width IntegerWidth) Type {
	fp := ctx.fingerprint(KindBuiltinInteger).
		boolean(width.abstract).u64(uint64(width.bits)).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*BuiltinIntegerType)
			return ok && n.width == width
		},
		func() Type {
			n := &BuiltinIntegerType{width: width}
			ctx.initBase(&n.typeBase, n, KindBuiltinInteger, 0, ArenaPermanent, true)
			return n
		})
}

func (ctx *TypeContext) BuiltinFloat(kind FloatKind) Type {
	fp := ctx.fingerprint(KindBuiltinFloat).u64(uint64(kind)).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*BuiltinFloatType)
			return ok && n.fpKind == kind
		},
		func() Type {
			n := &BuiltinFloatType{fpKind: kind}
			ctx.initBase(&n.typeBase, n, KindBuiltinFloat, 0, ArenaPermanent, true)
			return n
		})
}

func (ctx *TypeContext) BuiltinVector(element Type, numElements uint32) Type {
	ctx.checkOwned(element)
	if !element.Kind().IsBuiltin() {
		fatalf("vector element must be a builtin type, got %s", element)
	}
	fp := ctx.fingerprint(KindBuiltinVector).ty(element).u64(uint64(numElements)).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*BuiltinVectorType)
			return ok && n.element == element && n.numElements == numElements
		},
		func() Type {
			n := &BuiltinVectorType{element: element, numElements: numElements}
			ctx.initBase(&n.typeBase, n, KindBuiltinVector, element.Properties(), ArenaPermanent, true, element)
			return n
		})
}

func (ctx *TypeContext) Alias(decl *decls.Alias, underlying Type) Type {
	ctx.checkOwned(underlying)
	props := underlying.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindAlias).handle(decl).ty(underlying).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*AliasType)
			return ok && n.decl == decl && n.underlying == underlying
		},
		func() Type {
			n := &AliasType{decl: decl, underlying: underlying}
			ctx.initBase(&n.typeBase, n, KindAlias, props, arena, true, underlying)
			return n
		})
}

func (ctx *TypeContext) Paren(underlying Type) Type {
	ctx.checkOwned(underlying)
	props := underlying.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindParen).ty(underlying).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*ParenType)
			return ok && n.underlying == underlying
		},
		func() Type {
			n := &ParenType{underlying: underlying}
			ctx.initBase(&n.typeBase, n, KindParen, props, arena, true, underlying)
			return n
		})
}

func (ctx *TypeContext) ArraySliceOf(base Type) Type {
	ctx.checkOwned(base)
	props := base.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindArraySlice).ty(base).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*ArraySliceType)
			return ok && n.baseType == base
		},
		func() Type {
			n := &ArraySliceType{baseType: base}
			ctx.initBase(&n.typeBase, n, KindArraySlice, props, arena, true, base)
			return n
		})
}

func (ctx *TypeContext) OptionalOf(base Type) Type {
	ctx.checkOwned(base)
	props := base.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindOptional).ty(base).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*OptionalType)
			return ok && n.baseType == base
		},
		func() Type {
			n := &OptionalType{baseType: base}
			ctx.initBase(&n.typeBase, n, KindOptional, props, arena, true, base)
			return n
		})
}

// Tuple interns an ordered labeled element list. A tuple of exactly one
// unlabeled, non-variadic, non-defaulted element is not a tuple at all: it
// collapses to parenthesis sugar around the element.
func (ctx *TypeContext) Tuple(elements []TupleElement) Type {
	if len(elements) == 1 && elements[0].Name == "" && !elements[0].Variadic && !elements[0].HasDefault {
		return ctx.Paren(elements[0].Type)
	}
	var props RecursiveProperties
	children := make([]Type, len(elements))
	fp := ctx.fingerprint(KindTuple).u64(uint64(len(elements)))
	for i, e := range elements {
		ctx.checkOwned(e.Type)
		props = props.union(e.Type.Properties())
		children[i] = e.Type
		fp.str(e.Name).ty(e.Type).boolean(e.Variadic).boolean(e.HasDefault)
	}
	arena := arenaFor(props)
	return ctx.intern(arena, fp.sum(),
		func(t Type) bool {
			n, ok := t.(*TupleType)
			return ok && tupleElementsEqual(n.elements, elements)
		},
		func() Type {
			n := &TupleType{elements: append([]TupleElement(nil), elements...)}
			ctx.initBase(&n.typeBase, n, KindTuple, props, arena, true, children...)
			return n
		})
}

func tupleElementsEqual(a, b []TupleElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Function interns a monomorphic function type. A non-materializable input
// (inout or lvalue parameters) is a legal calling convention here, so the
// input's bit does not leak into the function's own properties.
func (ctx *TypeContext) Function(input, result Type, ext ExtInfo) Type {
	ctx.checkOwned(input, result)
	props := input.Properties().without(propIsNotMaterializable).union(result.Properties())
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindFunction).ty(input).ty(result).u64(uint64(ext.Bits())).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*FunctionType)
			return ok && n.input == input && n.result == result && n.ext == ext
		},
		func() Type {
			n := &FunctionType{input: input, result: result, ext: ext}
			ctx.initBase(&n.typeBase, n, KindFunction, props, arena, true, input, result)
			return n
		})
}

// GenericFunction interns a generic function type over an explicit
// parameter and requirement list.
func (ctx *TypeContext) GenericFunction(params []*GenericParamType, requirements []Requirement, input, result Type, ext ExtInfo) Type {
	if len(params) == 0 {
		fatalf("generic function type requires at least one generic parameter")
	}
	ctx.checkOwned(input, result)
	props := input.Properties().without(propIsNotMaterializable).union(result.Properties())
	children := make([]Type, 0, len(params)+2*len(requirements)+2)
	fp := ctx.fingerprint(KindGenericFunction).u64(uint64(len(params)))
	for _, p := range params {
		ctx.checkOwned(p)
		children = append(children, p)
		fp.ty(p)
	}
	fp.u64(uint64(len(requirements)))
	for _, r := range requirements {
		ctx.checkOwned(r.Subject, r.Constraint)
		children = append(children, r.Subject, r.Constraint)
		fp.u64(uint64(r.Kind)).ty(r.Subject).ty(r.Constraint)
	}
	children = append(children, input, result)
	fp.ty(input).ty(result).u64(uint64(ext.Bits()))
	arena := arenaFor(props)
	return ctx.intern(arena, fp.sum(),
		func(t Type) bool {
			n, ok := t.(*GenericFunctionType)
			return ok && genericFunctionEqual(n, params, requirements, input, result, ext)
		},
		func() Type {
			n := &GenericFunctionType{
				params:       append([]*GenericParamType(nil), params...),
				requirements: append([]Requirement(nil), requirements...),
				input:        input,
				result:       result,
				ext:          ext,
			}
			ctx.initBase(&n.typeBase, n, KindGenericFunction, props, arena, true, children...)
			return n
		})
}

func genericFunctionEqual(n *GenericFunctionType, params []*GenericParamType, requirements []Requirement, input, result Type, ext ExtInfo) bool {
	if n.input != input || n.result != result || n.ext != ext ||
		len(n.params) != len(params) || len(n.requirements) != len(requirements) {
		return false
	}
	for i := range params {
		if n.params[i] != params[i] {
			return false
		}
	}
	for i := range requirements {
		if n.requirements[i] != requirements[i] {
			return false
		}
	}
	return true
}

// Nominal interns the type of a non-generic nominal declaration. parent is
// the enclosing generic context's type, or nil.
func (ctx *TypeContext) Nominal(decl *decls.Nominal, parent Type) Type {
	if decl.IsGeneric() {
		fatalf("generic declaration %s needs UnboundGeneric or BoundGeneric, not Nominal", decl)
	}
	ctx.checkOwned(parent)
	kind := nominalKindFor(decl)
	var props RecursiveProperties
	if parent != nil {
		props = parent.Properties()
	}
	arena := arenaFor(props)
	fp := ctx.fingerprint(kind).handle(decl).ty(parent).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*NominalType)
			return ok && n.kind == kind && n.decl == decl && n.parent == parent
		},
		func() Type {
			n := &NominalType{decl: decl, parent: parent}
			ctx.initBase(&n.typeBase, n, kind, props, arena, true, parent)
			return n
		})
}

func nominalKindFor(decl *decls.Nominal) Kind {
	switch decl.Kind() {
	case decls.StructKind:
		return KindStruct
	case decls.EnumKind:
		return KindEnum
	case decls.ClassKind:
		return KindClass
	case decls.ProtocolKind:
		return KindProtocol
	}
	fatalf("unknown nominal declaration kind %s", decl.Kind())
	return KindError
}

func (ctx *TypeContext) Module(m *decls.Module) Type {
	fp := ctx.fingerprint(KindModule).handle(m).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*ModuleType)
			return ok && n.module == m
		},
		func() Type {
			n := &ModuleType{module: m}
			ctx.initBase(&n.typeBase, n, KindModule, 0, ArenaPermanent, true)
			return n
		})
}

// UnboundGeneric interns a reference to a generic declaration with no
// arguments supplied yet.
func (ctx *TypeContext) UnboundGeneric(decl *decls.Nominal, parent Type) Type {
	if !decl.IsGeneric() {
		fatalf("declaration %s is not generic", decl)
	}
	ctx.checkOwned(parent)
	var props RecursiveProperties
	if parent != nil {
		props = parent.Properties()
	}
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindUnboundGeneric).handle(decl).ty(parent).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*UnboundGenericType)
			return ok && n.decl == decl && n.parent == parent
		},
		func() Type {
			n := &UnboundGenericType{decl: decl, parent: parent}
			ctx.initBase(&n.typeBase, n, KindUnboundGeneric, props, arena, true, parent)
			return n
		})
}

// BoundGeneric interns the application of a generic declaration to an
// ordered argument list. Applying a declaration to dependent arguments does
// not make the application itself dependent-kinded: the bitset carries only
// what the arguments carry.
func (ctx *TypeContext) BoundGeneric(decl *decls.Nominal, parent Type, args []Type) Type {
	if len(decl.GenericParams()) != len(args) {
		fatalf("%s takes %d generic arguments, got %d", decl, len(decl.GenericParams()), len(args))
	}
	ctx.checkOwned(parent)
	props := propertiesOf(args...)
	if parent != nil {
		props = props.union(parent.Properties())
	}
	children := make([]Type, 0, len(args)+1)
	if parent != nil {
		children = append(children, parent)
	}
	children = append(children, args...)
	fp := ctx.fingerprint(KindBoundGeneric).handle(decl).ty(parent).types(args)
	arena := arenaFor(props)
	return ctx.intern(arena, fp.sum(),
		func(t Type) bool {
			n, ok := t.(*BoundGenericType)
			return ok && n.decl == decl && n.parent == parent && typesEqual(n.args, args)
		},
		func() Type {
			n := &BoundGenericType{decl: decl, parent: parent, args: append([]Type(nil), args...)}
			ctx.initBase(&n.typeBase, n, KindBoundGeneric, props, arena, true, children...)
			return n
		})
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (ctx *TypeContext) Metatype(instance Type) Type {
	return ctx.MetatypeWithRepresentation(instance, MetatypeReprUnspecified)
}

func (ctx *TypeContext) MetatypeWithRepresentation(instance Type, repr MetatypeRepresentation) Type {
	ctx.checkOwned(instance)
	props := instance.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindMetatype).ty(instance).u64(uint64(repr)).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*MetatypeType)
			return ok && n.instance == instance && n.repr == repr
		},
		func() Type {
			n := &MetatypeType{instance: instance, repr: repr}
			ctx.initBase(&n.typeBase, n, KindMetatype, props, arena, true, instance)
			return n
		})
}

// ExistentialMetatype interns the metatype of an existential: its instance
// must itself be an existential type.
func (ctx *TypeContext) ExistentialMetatype(instance Type, repr MetatypeRepresentation) Type {
	ctx.checkOwned(instance)
	if !isExistential(instance) {
		fatalf("existential metatype requires an existential instance type, got %s", instance)
	}
	props := instance.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindExistentialMetatype).ty(instance).u64(uint64(repr)).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*ExistentialMetatypeType)
			return ok && n.instance == instance && n.repr == repr
		},
		func() Type {
			n := &ExistentialMetatypeType{instance: instance, repr: repr}
			ctx.initBase(&n.typeBase, n, KindExistentialMetatype, props, arena, true, instance)
			return n
		})
}

func isExistential(t Type) bool {
	switch t.Kind() {
	case KindProtocol, KindProtocolComposition:
		return true
	}
	return false
}

// ProtocolComposition interns a conjunction of protocol requirements as
// written. Members must be protocol types or further compositions; the
// canonicalizer flattens, minimizes and sorts.
func (ctx *TypeContext) ProtocolComposition(protocols []Type) Type {
	for _, p := range protocols {
		if !isExistential(p) {
			fatalf("protocol composition member must be a protocol or composition, got %s", p)
		}
	}
	props := propertiesOf(protocols...)
	fp := ctx.fingerprint(KindProtocolComposition).types(protocols)
	arena := arenaFor(props)
	return ctx.intern(arena, fp.sum(),
		func(t Type) bool {
			n, ok := t.(*ProtocolCompositionType)
			return ok && typesEqual(n.protocols, protocols)
		},
		func() Type {
			n := &ProtocolCompositionType{protocols: append([]Type(nil), protocols...)}
			ctx.initBase(&n.typeBase, n, KindProtocolComposition, props, arena,
				ctx.compositionIsMinimal(protocols), protocols...)
			return n
		})
}

func (ctx *TypeContext) LValue(object Type) Type {
	ctx.checkOwned(object)
	props := object.Properties().union(propIsNotMaterializable)
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindLValue).ty(object).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*LValueType)
			return ok && n.object == object
		},
		func() Type {
			n := &LValueType{object: object}
			ctx.initBase(&n.typeBase, n, KindLValue, props, arena, true, object)
			return n
		})
}

func (ctx *TypeContext) InOut(object Type) Type {
	ctx.checkOwned(object)
	props := object.Properties().union(propIsNotMaterializable)
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindInOut).ty(object).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*InOutType)
			return ok && n.object == object
		},
		func() Type {
			n := &InOutType{object: object}
			ctx.initBase(&n.typeBase, n, KindInOut, props, arena, true, object)
			return n
		})
}

func (ctx *TypeContext) UnownedStorage(referent Type) Type {
	ctx.checkOwned(referent)
	props := referent.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindUnownedStorage).ty(referent).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*UnownedStorageType)
			return ok && n.referent == referent
		},
		func() Type {
			n := &UnownedStorageType{referent: referent}
			ctx.initBase(&n.typeBase, n, KindUnownedStorage, props, arena, true, referent)
			return n
		})
}

func (ctx *TypeContext) WeakStorage(referent Type) Type {
	ctx.checkOwned(referent)
	props := referent.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindWeakStorage).ty(referent).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*WeakStorageType)
			return ok && n.referent == referent
		},
		func() Type {
			n := &WeakStorageType{referent: referent}
			ctx.initBase(&n.typeBase, n, KindWeakStorage, props, arena, true, referent)
			return n
		})
}

// GenericParam interns the placeholder type of one generic parameter
// declaration. Intrinsically dependent.
func (ctx *TypeContext) GenericParam(decl *decls.GenericParam) *GenericParamType {
	fp := ctx.fingerprint(KindGenericParam).handle(decl).sum()
	t := ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*GenericParamType)
			return ok && n.decl == decl
		},
		func() Type {
			n := &GenericParamType{decl: decl}
			ctx.initBase(&n.typeBase, n, KindGenericParam, propIsDependent, ArenaPermanent, true)
			return n
		})
	return t.(*GenericParamType)
}

// AssociatedTypeRef interns the placeholder type of an associated-type
// declaration. Intrinsically dependent.
func (ctx *TypeContext) AssociatedTypeRef(decl *decls.AssociatedType) Type {
	fp := ctx.fingerprint(KindAssociatedType).handle(decl).sum()
	return ctx.intern(ArenaPermanent, fp,
		func(t Type) bool {
			n, ok := t.(*AssociatedTypeType)
			return ok && n.decl == decl
		},
		func() Type {
			n := &AssociatedTypeType{decl: decl}
			ctx.initBase(&n.typeBase, n, KindAssociatedType, propIsDependent, ArenaPermanent, true)
			return n
		})
}

// DependentMember interns base.name where the member is not resolved to an
// associated-type declaration yet.
func (ctx *TypeContext) DependentMember(base Type, name string) Type {
	return ctx.dependentMember(base, name, nil)
}

// ResolvedDependentMember interns base.assoc with the member pinned to a
// specific associated-type declaration.
func (ctx *TypeContext) ResolvedDependentMember(base Type, assoc *decls.AssociatedType) Type {
	return ctx.dependentMember(base, assoc.Name, assoc)
}

func (ctx *TypeContext) dependentMember(base Type, name string, assoc *decls.AssociatedType) Type {
	ctx.checkOwned(base)
	props := base.Properties().union(propIsDependent)
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindDependentMember).ty(base).str(name).handle(assoc).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*DependentMemberType)
			return ok && n.baseType == base && n.name == name && n.assoc == assoc
		},
		func() Type {
			n := &DependentMemberType{baseType: base, name: name, assoc: assoc}
			ctx.initBase(&n.typeBase, n, KindDependentMember, props, arena, true, base)
			return n
		})
}

// Substituted interns a substitution record: the original spelling alongside
// what it was replaced with.
func (ctx *TypeContext) Substituted(original, replacement Type) Type {
	ctx.checkOwned(original, replacement)
	props := replacement.Properties()
	arena := arenaFor(props)
	fp := ctx.fingerprint(KindSubstituted).ty(original).ty(replacement).sum()
	return ctx.intern(arena, fp,
		func(t Type) bool {
			n, ok := t.(*SubstitutedType)
			return ok && n.original == original && n.replacement == replacement
		},
		func() Type {
			n := &SubstitutedType{original: original, replacement: replacement}
			ctx.initBase(&n.typeBase, n, KindSubstituted, props, arena, true, replacement)
			return n
		})
}

// NewTypeVariable allocates a fresh inference variable. Never interned: two
// calls always produce distinct variables.
func (ctx *TypeContext) NewTypeVariable() *TypeVariableType {
	ctx.nextVarID++
	n := &TypeVariableType{varID: ctx.nextVarID}
	ctx.initBase(&n.typeBase, n, KindTypeVariable, propHasTypeVariable, ArenaConstraint, true)
	// registered under its own fingerprint so the constraint arena owns it
	fp := ctx.fingerprint(KindTypeVariable).u64(n.varID).sum()
	ctx.tables[ArenaConstraint][fp] = append(ctx.tables[ArenaConstraint][fp], n)
	return n
}
