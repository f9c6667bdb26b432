package types

import (
	"fmt"
	"iter"
	"strings"
)

// ParameterConvention is the ownership-transfer rule for one lowered
// parameter. The numeric encoding is stable: every indirect convention
// sorts below every direct one, so indirectness is a range check.
type ParameterConvention uint8

const (
	// ParamIndirectIn passes the address of an object the callee must
	// destroy.
	ParamIndirectIn ParameterConvention = 0
	// ParamIndirectInout passes the address of an object that must be
	// valid on entry and on exit, with exclusive access.
	ParamIndirectInout ParameterConvention = 1
	// ParamIndirectOut passes the address of uninitialized memory the
	// callee must initialize.
	ParamIndirectOut ParameterConvention = 2
	// ParamDirectOwned passes a value the callee must destroy.
	ParamDirectOwned ParameterConvention = 3
	// ParamDirectUnowned passes a value the callee does not own; it is
	// valid only at the instant the call begins.
	ParamDirectUnowned ParameterConvention = 4
	// ParamDirectGuaranteed passes a value the caller keeps valid for the
	// whole call.
	ParamDirectGuaranteed ParameterConvention = 5
)

func (c ParameterConvention) IsIndirect() bool { return c <= ParamIndirectOut }

func (c ParameterConvention) IsConsumed() bool {
	return c == ParamIndirectIn || c == ParamDirectOwned
}

func (c ParameterConvention) String() string {
	switch c {
	case ParamIndirectIn:
		return "@in"
	case ParamIndirectInout:
		return "@inout"
	case ParamIndirectOut:
		return "@out"
	case ParamDirectOwned:
		return "@owned"
	case ParamDirectUnowned:
		return "@unowned"
	case ParamDirectGuaranteed:
		return "@guaranteed"
	}
	return fmt.Sprintf("ParameterConvention(%d)", c)
}

// ResultConvention is the ownership-transfer rule for the lowered result.
type ResultConvention uint8

const (
	// ResultOwned hands the caller responsibility for destroying the value.
	ResultOwned ResultConvention = 0
	// ResultUnowned hands the caller a value it does not own.
	ResultUnowned ResultConvention = 1
	// ResultAutoreleased returns a possibly-autoreleased value; restricted
	// to a single class-typed result.
	ResultAutoreleased ResultConvention = 2
)

func (c ResultConvention) String() string {
	switch c {
	case ResultOwned:
		return "@owned"
	case ResultUnowned:
		return "@unowned"
	case ResultAutoreleased:
		return "@autoreleased"
	}
	return fmt.Sprintf("ResultConvention(%d)", c)
}

// SILParameterInfo pairs a lowered parameter type with its convention.
// Conventions are descriptive metadata for the lowering collaborator; this
// core stores and substitutes them unchanged.
type SILParameterInfo struct {
	Type       CanType
	Convention ParameterConvention
}

func (p SILParameterInfo) String() string {
	return p.Convention.String() + " " + p.Type.String()
}

// SILResultInfo pairs the lowered result type with its convention.
type SILResultInfo struct {
	Type       CanType
	Convention ResultConvention
}

func (r SILResultInfo) String() string {
	return r.Convention.String() + " " + r.Type.String()
}

// SILFunctionType is the lowered, convention-annotated form of a function
// type used at the code-generation boundary. All component types are
// canonical; the node itself is always canonical.
type SILFunctionType struct {
	typeBase
	genericParams []*GenericParamType
	requirements  []Requirement
	ext           ExtInfo
	callee        ParameterConvention
	params        []SILParameterInfo
	result        SILResultInfo
	// when set, params[0] is the indirect result placeholder
	indirectResult bool
}

func (t *SILFunctionType) GenericParams() []*GenericParamType { return t.genericParams }
func (t *SILFunctionType) Requirements() []Requirement        { return t.requirements }
func (t *SILFunctionType) IsPolymorphic() bool                { return len(t.genericParams) > 0 }
func (t *SILFunctionType) ExtInfo() ExtInfo                   { return t.ext }
func (t *SILFunctionType) CalleeConvention() ParameterConvention { return t.callee }
func (t *SILFunctionType) Parameters() []SILParameterInfo     { return t.params }
func (t *SILFunctionType) Result() SILResultInfo              { return t.result }
func (t *SILFunctionType) HasIndirectResult() bool            { return t.indirectResult }

// IndirectResult returns the placeholder parameter standing for the result
// slot. Precondition: HasIndirectResult.
func (t *SILFunctionType) IndirectResult() SILParameterInfo {
	if !t.indirectResult {
		fatalf("function type has no indirect result")
	}
	return t.params[0]
}

func (t *SILFunctionType) Children() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, p := range t.genericParams {
			if !yield(p) {
				return
			}
		}
		for _, r := range t.requirements {
			if !yield(r.Subject) || !yield(r.Constraint) {
				return
			}
		}
		for _, p := range t.params {
			if !yield(p.Type.Type) {
				return
			}
		}
		yield(t.result.Type.Type)
	}
}

func (t *SILFunctionType) String() string {
	parts := make([]string, len(t.params))
	for i, p := range t.params {
		parts[i] = p.String()
	}
	return "$(" + strings.Join(parts, ", ") + ") -> " + t.result.String()
}

// SILFunction interns a lowered function type. Component types must be
// canonical. When indirectResult is set, the placeholder occupies parameter
// slot 0 and must carry an indirect convention; indirect parameters must
// sort before direct ones.
func (ctx *TypeContext) SILFunction(
	genericParams []*GenericParamType,
	requirements []Requirement,
	ext ExtInfo,
	callee ParameterConvention,
	params []SILParameterInfo,
	result SILResultInfo,
	indirectResult bool,
) *SILFunctionType {
	if indirectResult {
		if len(params) == 0 || !params[0].Convention.IsIndirect() {
			fatalf("indirect result placeholder must occupy parameter slot 0 with an indirect convention")
		}
		seenDirect := false
		for _, p := range params {
			if !p.Convention.IsIndirect() {
				seenDirect = true
			} else if seenDirect {
				fatalf("indirect parameter %s after a direct one", p)
			}
		}
	}
	if result.Convention == ResultAutoreleased && !isClassType(result.Type.Type) {
		fatalf("autoreleased result requires a single class-typed result, got %s", result.Type)
	}

	var props RecursiveProperties
	fp := ctx.fingerprint(KindSILFunction).u64(uint64(len(genericParams)))
	for _, p := range genericParams {
		ctx.checkOwned(p)
		fp.ty(p)
	}
	fp.u64(uint64(len(requirements)))
	for _, r := range requirements {
		ctx.checkOwned(r.Subject, r.Constraint)
		requireCanonical(CanType{Type: r.Subject})
		requireCanonical(CanType{Type: r.Constraint})
		fp.u64(uint64(r.Kind)).ty(r.Subject).ty(r.Constraint)
	}
	fp.u64(uint64(ext.Bits())).u64(uint64(callee)).u64(uint64(len(params)))
	for _, p := range params {
		requireCanonical(p.Type)
		props = props.union(p.Type.Properties())
		fp.ty(p.Type.Type).u64(uint64(p.Convention))
	}
	requireCanonical(result.Type)
	props = props.union(result.Type.Properties())
	fp.ty(result.Type.Type).u64(uint64(result.Convention)).boolean(indirectResult)

	arena := arenaFor(props)
	t := ctx.intern(arena, fp.sum(),
		func(t Type) bool {
			n, ok := t.(*SILFunctionType)
			return ok && silFunctionEqual(n, genericParams, requirements, ext, callee, params, result, indirectResult)
		},
		func() Type {
			n := &SILFunctionType{
				genericParams:  append([]*GenericParamType(nil), genericParams...),
				requirements:   append([]Requirement(nil), requirements...),
				ext:            ext,
				callee:         callee,
				params:         append([]SILParameterInfo(nil), params...),
				result:         result,
				indirectResult: indirectResult,
			}
			ctx.initBase(&n.typeBase, n, KindSILFunction, props, arena, true)
			return n
		})
	return t.(*SILFunctionType)
}

func silFunctionEqual(n *SILFunctionType, genericParams []*GenericParamType, requirements []Requirement, ext ExtInfo, callee ParameterConvention, params []SILParameterInfo, result SILResultInfo, indirectResult bool) bool {
	if n.ext != ext || n.callee != callee || n.result != result || n.indirectResult != indirectResult ||
		len(n.genericParams) != len(genericParams) || len(n.requirements) != len(requirements) ||
		len(n.params) != len(params) {
		return false
	}
	for i := range genericParams {
		if n.genericParams[i] != genericParams[i] {
			return false
		}
	}
	for i := range requirements {
		if n.requirements[i] != requirements[i] {
			return false
		}
	}
	for i := range params {
		if n.params[i] != params[i] {
			return false
		}
	}
	return true
}

func requireCanonical(t CanType) {
	if t.Type == nil || !t.IsCanonical() {
		fatalf("lowered function component must be canonical, got %v", t.Type)
	}
}

func isClassType(t Type) bool {
	switch n := t.(type) {
	case *NominalType:
		return n.kind == KindClass
	case *BoundGenericType:
		return n.decl.IsClass()
	}
	return false
}
