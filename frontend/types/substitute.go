package types

import (
	"github.com/cottand/sable/frontend/decls"
	"github.com/pkg/errors"
)

// ErrNoSubstitution reports a generic parameter or archetype with no map
// entry under the SubstFail policy.
var ErrNoSubstitution = errors.New("no substitution entry")

// MissingPolicy controls what happens when substitution meets a parameter
// the map has no entry for.
type MissingPolicy uint8

const (
	// SubstFail makes the whole substitution return an error.
	SubstFail MissingPolicy = iota
	// SubstLeaveUnchanged keeps the reference as written: partial
	// substitution, for specializing only some nesting levels.
	SubstLeaveUnchanged
)

// SubstitutionMap maps generic parameters and archetypes, by identity, to
// their replacements.
type SubstitutionMap struct {
	entries map[Type]Type
}

func NewSubstitutionMap() *SubstitutionMap {
	return &SubstitutionMap{entries: make(map[Type]Type)}
}

// Add records original -> replacement. The original must be a substitutable
// placeholder; re-adding with a different replacement is a contract
// violation.
func (m *SubstitutionMap) Add(original, replacement Type) *SubstitutionMap {
	if !original.Kind().IsSubstitutable() {
		fatalf("cannot substitute %s node %s", original.Kind(), original)
	}
	if prev, ok := m.entries[original]; ok && prev != replacement {
		fatalf("conflicting substitutions for %s", original)
	}
	m.entries[original] = replacement
	return m
}

func (m *SubstitutionMap) Lookup(t Type) (Type, bool) {
	r, ok := m.entries[t]
	return r, ok
}

func (m *SubstitutionMap) Len() int { return len(m.entries) }

// Substitute replaces every generic parameter and archetype in t through
// the map, resolving dependent members against their substituted bases. It
// never mutates its input: untouched subtrees come back as the same nodes,
// and fresh nodes are interned only where something changed. resolver may
// be nil when every declaration is already checked.
func Substitute(t Type, m *SubstitutionMap, policy MissingPolicy, resolver decls.Resolver) (Type, error) {
	s := &substituter{
		ctx:      t.Context(),
		m:        m,
		policy:   policy,
		resolver: resolver,
	}
	return s.walk(t)
}

type substituter struct {
	ctx      *TypeContext
	m        *SubstitutionMap
	policy   MissingPolicy
	resolver decls.Resolver
	// bound holds the parameters of generic function types currently being
	// walked: a missing entry for one of those is not an error, it just
	// stays generic.
	bound map[*GenericParamType]struct{}
}

func (s *substituter) walk(t Type) (Type, error) {
	props := t.Properties()
	// nothing substitutable beneath: the whole subtree is a no-op. Generic
	// signatures are exempt: their parameters are substitutable even when
	// nothing in the body mentions them.
	if k := t.Kind(); k != KindGenericFunction && k != KindSILFunction &&
		!props.IsDependent() && !props.hasArchetype() {
		return t, nil
	}

	switch n := t.(type) {
	case *GenericParamType:
		if rep, ok := s.m.Lookup(n); ok {
			return s.record(n, rep), nil
		}
		if _, isBound := s.bound[n]; isBound {
			return t, nil
		}
		return s.missing(t)

	case *AssociatedTypeType:
		if rep, ok := s.m.Lookup(n); ok {
			return s.record(n, rep), nil
		}
		return s.missing(t)

	case *ArchetypeType:
		if rep, ok := s.m.Lookup(n); ok {
			return s.record(n, rep), nil
		}
		if n.parent != nil {
			parent, err := s.walk(n.parent)
			if err != nil {
				return nil, err
			}
			if parent != n.parent {
				return s.resolveMember(n, parent, n.name)
			}
		}
		return s.missing(t)

	case *DependentMemberType:
		base, err := s.walk(n.baseType)
		if err != nil {
			return nil, err
		}
		if base == n.baseType {
			return t, nil
		}
		baseCan := Canonicalize(base).Type
		if baseCan.IsDependent() {
			// still abstract: rebuild over the new base
			return s.ctx.dependentMember(base, n.name, n.assoc), nil
		}
		res, err := s.resolveMember(n, baseCan, n.name)
		if err != nil {
			return nil, err
		}
		if res == Type(n) {
			// unresolvable member left in place: keep the member spelling
			// over the substituted base
			return s.ctx.dependentMember(base, n.name, n.assoc), nil
		}
		return res, nil

	case *AliasType:
		u, err := s.walk(n.underlying)
		if err != nil || u == n.underlying {
			return t, err
		}
		return s.ctx.Alias(n.decl, u), nil

	case *ParenType:
		u, err := s.walk(n.underlying)
		if err != nil || u == n.underlying {
			return t, err
		}
		return s.ctx.Paren(u), nil

	case *ArraySliceType:
		b, err := s.walk(n.baseType)
		if err != nil || b == n.baseType {
			return t, err
		}
		return s.ctx.ArraySliceOf(b), nil

	case *OptionalType:
		b, err := s.walk(n.baseType)
		if err != nil || b == n.baseType {
			return t, err
		}
		return s.ctx.OptionalOf(b), nil

	case *SubstitutedType:
		r, err := s.walk(n.replacement)
		if err != nil || r == n.replacement {
			return t, err
		}
		return s.ctx.Substituted(n.original, r), nil

	case *BuiltinVectorType:
		e, err := s.walk(n.element)
		if err != nil || e == n.element {
			return t, err
		}
		return s.ctx.BuiltinVector(e, n.numElements), nil

	case *TupleType:
		changed := false
		elems := make([]TupleElement, len(n.elements))
		for i, e := range n.elements {
			sub, err := s.walk(e.Type)
			if err != nil {
				return nil, err
			}
			changed = changed || sub != e.Type
			e.Type = sub
			elems[i] = e
		}
		if !changed {
			return t, nil
		}
		return s.ctx.Tuple(elems), nil

	case *FunctionType:
		in, err := s.walk(n.input)
		if err != nil {
			return nil, err
		}
		out, err := s.walk(n.result)
		if err != nil {
			return nil, err
		}
		if in == n.input && out == n.result {
			return t, nil
		}
		return s.ctx.Function(in, out, n.ext), nil

	case *GenericFunctionType:
		return s.walkGenericFunction(n)

	case *NominalType:
		p, err := s.walkParent(n.parent)
		if err != nil || p == n.parent {
			return t, err
		}
		return s.ctx.Nominal(n.decl, p), nil

	case *UnboundGenericType:
		p, err := s.walkParent(n.parent)
		if err != nil || p == n.parent {
			return t, err
		}
		return s.ctx.UnboundGeneric(n.decl, p), nil

	case *BoundGenericType:
		p, err := s.walkParent(n.parent)
		if err != nil {
			return nil, err
		}
		changed := p != n.parent
		args := make([]Type, len(n.args))
		for i, a := range n.args {
			sub, err := s.walk(a)
			if err != nil {
				return nil, err
			}
			changed = changed || sub != a
			args[i] = sub
		}
		if !changed {
			return t, nil
		}
		return s.ctx.BoundGeneric(n.decl, p, args), nil

	case *MetatypeType:
		inst, err := s.walk(n.instance)
		if err != nil || inst == n.instance {
			return t, err
		}
		return s.ctx.MetatypeWithRepresentation(inst, n.repr), nil

	case *ExistentialMetatypeType:
		inst, err := s.walk(n.instance)
		if err != nil || inst == n.instance {
			return t, err
		}
		return s.ctx.ExistentialMetatype(Canonicalize(inst).Type, n.repr), nil

	case *ProtocolCompositionType:
		changed := false
		protos := make([]Type, len(n.protocols))
		for i, p := range n.protocols {
			sub, err := s.walk(p)
			if err != nil {
				return nil, err
			}
			changed = changed || sub != p
			protos[i] = sub
		}
		if !changed {
			return t, nil
		}
		return s.ctx.ProtocolComposition(protos), nil

	case *LValueType:
		o, err := s.walk(n.object)
		if err != nil || o == n.object {
			return t, err
		}
		return s.ctx.LValue(o), nil

	case *InOutType:
		o, err := s.walk(n.object)
		if err != nil || o == n.object {
			return t, err
		}
		return s.ctx.InOut(o), nil

	case *UnownedStorageType:
		r, err := s.walk(n.referent)
		if err != nil || r == n.referent {
			return t, err
		}
		return s.ctx.UnownedStorage(r), nil

	case *WeakStorageType:
		r, err := s.walk(n.referent)
		if err != nil || r == n.referent {
			return t, err
		}
		return s.ctx.WeakStorage(r), nil

	case *SILFunctionType:
		return s.walkSILFunction(n)
	}

	// remaining kinds carry no substitutable positions; the property check
	// above should have returned already
	return t, nil
}

// record wraps a replaced placeholder in a substitution record so the
// original spelling survives; canonicalization strips it.
func (s *substituter) record(original, replacement Type) Type {
	if replacement == original {
		return original
	}
	return s.ctx.Substituted(original, replacement)
}

func (s *substituter) missing(t Type) (Type, error) {
	if s.policy == SubstLeaveUnchanged {
		return t, nil
	}
	return nil, errors.Wrapf(ErrNoSubstitution, "for %s", t)
}

func (s *substituter) walkParent(parent Type) (Type, error) {
	if parent == nil {
		return nil, nil
	}
	return s.walk(parent)
}

// walkGenericFunction substitutes through a generic function type. Bound
// parameters with map entries disappear from the signature; with a complete
// map the result degenerates to a plain function type.
func (s *substituter) walkGenericFunction(n *GenericFunctionType) (Type, error) {
	var remaining []*GenericParamType
	for _, p := range n.params {
		if _, ok := s.m.Lookup(p); !ok {
			remaining = append(remaining, p)
		}
	}

	outerBound := s.bound
	s.bound = make(map[*GenericParamType]struct{}, len(remaining))
	for p := range outerBound {
		s.bound[p] = struct{}{}
	}
	for _, p := range remaining {
		s.bound[p] = struct{}{}
	}
	defer func() { s.bound = outerBound }()

	in, err := s.walk(n.input)
	if err != nil {
		return nil, err
	}
	out, err := s.walk(n.result)
	if err != nil {
		return nil, err
	}

	var reqs []Requirement
	for _, r := range n.requirements {
		subject, err := s.walk(r.Subject)
		if err != nil {
			return nil, err
		}
		constraint, err := s.walk(r.Constraint)
		if err != nil {
			return nil, err
		}
		// a requirement whose subject became concrete is discharged; the
		// caller's substitution is assumed well-typed
		if !subject.IsDependent() {
			continue
		}
		reqs = append(reqs, Requirement{Kind: r.Kind, Subject: subject, Constraint: constraint})
	}

	if len(remaining) == 0 {
		return s.ctx.Function(in, out, n.ext), nil
	}
	if len(remaining) == len(n.params) && in == n.input && out == n.result &&
		len(reqs) == len(n.requirements) {
		return n, nil
	}
	return s.ctx.GenericFunction(remaining, reqs, in, out, n.ext), nil
}

// walkSILFunction substitutes the component types of a lowered function
// type, carrying every convention tag through unchanged.
func (s *substituter) walkSILFunction(n *SILFunctionType) (Type, error) {
	var remaining []*GenericParamType
	for _, p := range n.genericParams {
		if _, ok := s.m.Lookup(p); !ok {
			remaining = append(remaining, p)
		}
	}

	outerBound := s.bound
	s.bound = make(map[*GenericParamType]struct{}, len(remaining))
	for p := range outerBound {
		s.bound[p] = struct{}{}
	}
	for _, p := range remaining {
		s.bound[p] = struct{}{}
	}
	defer func() { s.bound = outerBound }()

	changed := len(remaining) != len(n.genericParams)
	params := make([]SILParameterInfo, len(n.params))
	for i, p := range n.params {
		sub, err := s.walk(p.Type.Type)
		if err != nil {
			return nil, err
		}
		can := Canonicalize(sub)
		changed = changed || can.Type != p.Type.Type
		params[i] = SILParameterInfo{Type: can, Convention: p.Convention}
	}
	sub, err := s.walk(n.result.Type.Type)
	if err != nil {
		return nil, err
	}
	resultCan := Canonicalize(sub)
	changed = changed || resultCan.Type != n.result.Type.Type
	result := SILResultInfo{Type: resultCan, Convention: n.result.Convention}

	var reqs []Requirement
	for _, r := range n.requirements {
		subject, err := s.walk(r.Subject)
		if err != nil {
			return nil, err
		}
		constraint, err := s.walk(r.Constraint)
		if err != nil {
			return nil, err
		}
		if !subject.IsDependent() {
			continue
		}
		req := Requirement{
			Kind:       r.Kind,
			Subject:    Canonicalize(subject).Type,
			Constraint: Canonicalize(constraint).Type,
		}
		changed = changed || req != r
		reqs = append(reqs, req)
	}
	changed = changed || len(reqs) != len(n.requirements)

	if !changed {
		return n, nil
	}
	return s.ctx.SILFunction(remaining, reqs, n.ext, n.callee, params, result, n.indirectResult), nil
}

// resolveMember resolves member name against a substituted base: through
// the nested-type table when the base is an archetype, through the
// context's witness registry when it is nominal. Completing a declaration's
// deferred members through the resolver is the one legitimate reentry into
// unfinished declarations.
func (s *substituter) resolveMember(original Type, base Type, name string) (Type, error) {
	// the base may arrive wrapped in substitution records
	base = Canonicalize(base).Type
	if arch, ok := base.(*ArchetypeType); ok {
		if arch.HasNestedTypes() {
			if nt, ok := arch.NestedType(name); ok {
				return s.record(original, nt), nil
			}
		}
		return s.missing(original)
	}

	var decl *decls.Nominal
	var boundArgs []Type
	switch b := base.(type) {
	case *NominalType:
		decl = b.decl
	case *BoundGenericType:
		decl = b.decl
		boundArgs = b.args
	default:
		return s.missing(original)
	}

	if !decl.MembersComplete() {
		if s.resolver == nil {
			fatalf("member %s of %s requested before checking completed, and no resolver is available", name, decl)
		}
		if err := s.resolver.CompleteMembers(decl); err != nil {
			return nil, err
		}
	}

	witness, ok := s.ctx.typeWitness(decl, name)
	if !ok {
		return s.missing(original)
	}

	// a witness on a generic declaration is spelled in terms of the
	// declaration's own parameters; apply the bound arguments to it
	if len(boundArgs) > 0 {
		inner := NewSubstitutionMap()
		for i, gp := range decl.GenericParams() {
			inner.Add(s.ctx.GenericParam(gp), boundArgs[i])
		}
		resolved, err := Substitute(witness, inner, s.policy, s.resolver)
		if err != nil {
			return nil, err
		}
		return s.record(original, resolved), nil
	}
	return s.record(original, witness), nil
}
