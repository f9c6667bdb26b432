package types

import (
	"sort"

	"github.com/xtgo/set"
)

// CanType wraps a Type known to be canonical, so signatures can demand
// canonicality in the type system instead of asserting it.
type CanType struct {
	Type
}

// Canonicalize reduces a type to its unique sugar-free representative.
// Idempotent and total over well-formed types: a canonical type
// canonicalizes to itself, and every other node fills its canonical-form
// slot exactly once, on first request.
func Canonicalize(t Type) CanType {
	b := t.base()
	if b.canonical != nil {
		return CanType{b.canonical}
	}
	ctx := b.ctx
	var can Type
	switch n := t.(type) {
	case *AliasType, *ParenType, *ArraySliceType, *OptionalType, *SubstitutedType:
		// strip one sugar level and keep going
		can = Canonicalize(Desugar(t)).Type

	case *BuiltinVectorType:
		can = ctx.BuiltinVector(Canonicalize(n.element).Type, n.numElements)

	case *TupleType:
		elems := make([]TupleElement, len(n.elements))
		for i, e := range n.elements {
			e.Type = Canonicalize(e.Type).Type
			elems[i] = e
		}
		can = ctx.Tuple(elems)

	case *FunctionType:
		can = ctx.Function(Canonicalize(n.input).Type, Canonicalize(n.result).Type, n.ext)

	case *GenericFunctionType:
		reqs := make([]Requirement, len(n.requirements))
		for i, r := range n.requirements {
			r.Subject = Canonicalize(r.Subject).Type
			r.Constraint = Canonicalize(r.Constraint).Type
			reqs[i] = r
		}
		can = ctx.GenericFunction(n.params, reqs, Canonicalize(n.input).Type, Canonicalize(n.result).Type, n.ext)

	case *NominalType:
		can = ctx.Nominal(n.decl, canonicalizeParent(n.parent))

	case *UnboundGenericType:
		can = ctx.UnboundGeneric(n.decl, canonicalizeParent(n.parent))

	case *BoundGenericType:
		args := make([]Type, len(n.args))
		for i, a := range n.args {
			args[i] = Canonicalize(a).Type
		}
		can = ctx.BoundGeneric(n.decl, canonicalizeParent(n.parent), args)

	case *MetatypeType:
		can = ctx.MetatypeWithRepresentation(Canonicalize(n.instance).Type, n.repr)

	case *ExistentialMetatypeType:
		can = ctx.ExistentialMetatype(Canonicalize(n.instance).Type, n.repr)

	case *ProtocolCompositionType:
		can = ctx.canonicalizeComposition(n)

	case *LValueType:
		can = ctx.LValue(Canonicalize(n.object).Type)

	case *InOutType:
		can = ctx.InOut(Canonicalize(n.object).Type)

	case *UnownedStorageType:
		can = ctx.UnownedStorage(Canonicalize(n.referent).Type)

	case *WeakStorageType:
		can = ctx.WeakStorage(Canonicalize(n.referent).Type)

	case *DependentMemberType:
		can = ctx.dependentMember(Canonicalize(n.baseType).Type, n.name, n.assoc)

	default:
		// every remaining kind resolves its slot at construction
		fatalf("%s node unexpectedly has no canonical form", t.Kind())
	}
	b.setCanonical(can)
	return CanType{can}
}

func canonicalizeParent(parent Type) Type {
	if parent == nil {
		return nil
	}
	return Canonicalize(parent).Type
}

// Desugar strips exactly one level of sugar: the alias, paren or
// substitution record unwraps, and the array/optional spellings expand to
// applications of the context's well-known declarations. Non-sugar types
// (the error sentinel included) desugar to themselves.
func Desugar(t Type) Type {
	ctx := t.Context()
	switch n := t.(type) {
	case *AliasType:
		return n.underlying
	case *ParenType:
		return n.underlying
	case *ArraySliceType:
		return ctx.BoundGeneric(ctx.sliceDecl, nil, []Type{n.baseType})
	case *OptionalType:
		return ctx.BoundGeneric(ctx.optionalDecl, nil, []Type{n.baseType})
	case *SubstitutedType:
		return n.replacement
	}
	return t
}

// protoOrder sorts protocol types by their stable total order: owning
// module name, then declaration name.
type protoOrder []Type

func (s protoOrder) Len() int      { return len(s) }
func (s protoOrder) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s protoOrder) Less(i, j int) bool {
	return protoLess(s[i].(*NominalType), s[j].(*NominalType))
}

func protoLess(a, b *NominalType) bool {
	am, bm := a.decl.Module().Name, b.decl.Module().Name
	if am != bm {
		return am < bm
	}
	return a.decl.Name() < b.decl.Name()
}

// canonicalizeComposition flattens nested compositions, drops every protocol
// implied by inheritance from another member, deduplicates, sorts, and
// collapses a singleton to the protocol type itself.
func (ctx *TypeContext) canonicalizeComposition(n *ProtocolCompositionType) Type {
	var members []Type
	for _, p := range n.protocols {
		switch can := Canonicalize(p).Type.(type) {
		case *NominalType:
			members = append(members, can)
		case *ProtocolCompositionType:
			members = append(members, can.protocols...)
		default:
			fatalf("composition member canonicalized to non-protocol %s", can)
		}
	}

	sort.Sort(protoOrder(members))
	members = members[:set.Uniq(protoOrder(members))]

	minimized := members[:0]
	for i, p := range members {
		implied := false
		for j, q := range members {
			if i == j {
				continue
			}
			if q.(*NominalType).decl.Inherits(p.(*NominalType).decl) {
				implied = true
				break
			}
		}
		if !implied {
			minimized = append(minimized, p)
		}
	}

	if len(minimized) == 1 {
		return minimized[0]
	}
	return ctx.ProtocolComposition(minimized)
}

// compositionIsMinimal reports whether the spelled member list already is
// its own canonical form: canonical protocol members in strict sorted order
// with no member implied by another.
func (ctx *TypeContext) compositionIsMinimal(protocols []Type) bool {
	for i, p := range protocols {
		nom, ok := p.(*NominalType)
		if !ok || nom.kind != KindProtocol || !nom.IsCanonical() {
			return false
		}
		if i > 0 && !protoLess(protocols[i-1].(*NominalType), nom) {
			return false
		}
	}
	for i, p := range protocols {
		for j, q := range protocols {
			if i != j && q.(*NominalType).decl.Inherits(p.(*NominalType).decl) {
				return false
			}
		}
	}
	return true
}
