// Package decls holds the declaration handles the type representation hangs
// off of. Handles are opaque to the types package: it compares them by
// identity and only queries names, generic parameter lists and
// conformance/superclass requirements. Name binding populates them; the
// types package never mutates them except through Resolver.
package decls

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
)

// Module identifies one compilation unit. Compared by identity.
type Module struct {
	Name string
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

func (m *Module) String() string { return m.Name }

// NominalKind discriminates the shapes a Nominal handle can take.
// Accessors narrow on it explicitly; a handle is never reinterpreted across
// unrelated shapes.
type NominalKind uint8

const (
	StructKind NominalKind = iota
	EnumKind
	ClassKind
	ProtocolKind
)

func (k NominalKind) String() string {
	switch k {
	case StructKind:
		return "struct"
	case EnumKind:
		return "enum"
	case ClassKind:
		return "class"
	case ProtocolKind:
		return "protocol"
	}
	return fmt.Sprintf("NominalKind(%d)", k)
}

// Nominal is the handle for a struct, enum, class or protocol declaration.
// Compared by identity. The member list (associated types for protocols) may
// be deferred; MembersComplete reports whether it has been populated, and a
// Resolver can force-complete it during substitution.
type Nominal struct {
	kind       NominalKind
	name       string
	module     *Module
	params     []*GenericParam
	inherited  *set.Set[*Nominal] // protocols only; transitively closed
	superclass *Nominal           // classes only
	assocTypes []*AssociatedType  // protocols only
	complete   bool
}

func NewStruct(module *Module, name string, params ...*GenericParam) *Nominal {
	return newNominal(StructKind, module, name, params)
}

func NewEnum(module *Module, name string, params ...*GenericParam) *Nominal {
	return newNominal(EnumKind, module, name, params)
}

func NewClass(module *Module, name string, params ...*GenericParam) *Nominal {
	return newNominal(ClassKind, module, name, params)
}

// NewProtocol creates a protocol handle. The inherited set is closed
// transitively at construction, so Inherits answers in one set probe.
func NewProtocol(module *Module, name string, inherits ...*Nominal) *Nominal {
	d := newNominal(ProtocolKind, module, name, nil)
	d.inherited = set.New[*Nominal](len(inherits))
	for _, p := range inherits {
		if p.kind != ProtocolKind {
			panic(fmt.Sprintf("protocol %s cannot inherit from %s %s", name, p.kind, p.name))
		}
		d.inherited.Insert(p)
		d.inherited.InsertSet(p.inherited)
	}
	return d
}

func newNominal(kind NominalKind, module *Module, name string, params []*GenericParam) *Nominal {
	return &Nominal{
		kind:   kind,
		name:   name,
		module: module,
		params: params,
	}
}

func (d *Nominal) Kind() NominalKind             { return d.kind }
func (d *Nominal) Name() string                  { return d.name }
func (d *Nominal) Module() *Module               { return d.module }
func (d *Nominal) GenericParams() []*GenericParam { return d.params }
func (d *Nominal) IsGeneric() bool               { return len(d.params) > 0 }

func (d *Nominal) String() string {
	return d.module.Name + "." + d.name
}

// IsProtocol narrows the handle; callers check before using protocol-only
// queries.
func (d *Nominal) IsProtocol() bool { return d.kind == ProtocolKind }
func (d *Nominal) IsClass() bool    { return d.kind == ClassKind }

// Inherits reports whether this protocol transitively inherits other.
func (d *Nominal) Inherits(other *Nominal) bool {
	if d.kind != ProtocolKind || d.inherited == nil {
		return false
	}
	return d.inherited.Contains(other)
}

// InheritedProtocols returns the transitive inherited set. Nil for
// non-protocols.
func (d *Nominal) InheritedProtocols() *set.Set[*Nominal] { return d.inherited }

// Superclass returns the superclass handle of a class, or nil.
func (d *Nominal) Superclass() *Nominal {
	if d.kind != ClassKind {
		panic(fmt.Sprintf("%s %s cannot have a superclass", d.kind, d.name))
	}
	return d.superclass
}

func (d *Nominal) SetSuperclass(sup *Nominal) {
	if d.kind != ClassKind || (sup != nil && sup.kind != ClassKind) {
		panic(fmt.Sprintf("superclass relation requires classes, got %s and %v", d.kind, sup))
	}
	d.superclass = sup
}

// MembersComplete reports whether the member list has been populated.
// Substitution consults this before resolving dependent members.
func (d *Nominal) MembersComplete() bool { return d.complete }

// SetMembers populates the deferred member list and marks the declaration
// complete. Idempotent only for an identical list; repopulating with a
// different one is a contract violation upstream, not checked here.
func (d *Nominal) SetMembers(assocTypes []*AssociatedType) {
	d.assocTypes = assocTypes
	d.complete = true
}

// AssociatedType finds a member associated-type declaration by name.
// Precondition: MembersComplete.
func (d *Nominal) AssociatedType(name string) (*AssociatedType, bool) {
	if !d.complete {
		panic(fmt.Sprintf("member lookup on incomplete declaration %s", d))
	}
	for _, at := range d.assocTypes {
		if at.Name == name {
			return at, true
		}
	}
	return nil, false
}

// AssociatedTypes returns the member list. Precondition: MembersComplete.
func (d *Nominal) AssociatedTypes() []*AssociatedType {
	if !d.complete {
		panic(fmt.Sprintf("member lookup on incomplete declaration %s", d))
	}
	return d.assocTypes
}

// AssociatedType is the handle for an associated-type requirement declared
// inside a protocol.
type AssociatedType struct {
	Name     string
	Protocol *Nominal
}

func NewAssociatedType(proto *Nominal, name string) *AssociatedType {
	if !proto.IsProtocol() {
		panic(fmt.Sprintf("associated type %s declared outside a protocol", name))
	}
	return &AssociatedType{Name: name, Protocol: proto}
}

func (a *AssociatedType) String() string {
	return a.Protocol.String() + "." + a.Name
}

// GenericParam is the handle for one formal generic parameter, addressed by
// its position: depth counts enclosing generic contexts, index the position
// within one parameter list.
type GenericParam struct {
	Name  string
	Depth int
	Index int
}

func NewGenericParam(name string, depth, index int) *GenericParam {
	return &GenericParam{Name: name, Depth: depth, Index: index}
}

func (p *GenericParam) String() string { return p.Name }

// Alias is the handle for a type alias declaration; the aliased type lives on
// the alias type node, not here, so this package stays independent of the
// type representation.
type Alias struct {
	Name   string
	Module *Module
}

func NewAlias(module *Module, name string) *Alias {
	return &Alias{Name: name, Module: module}
}

func (a *Alias) String() string { return a.Module.Name + "." + a.Name }

// Resolver force-completes a declaration's deferred member list. It is the
// one legitimate reentry point from substitution back into not-yet-checked
// declarations. May be nil when the whole program is already checked; then an
// incomplete declaration during lookup is a fatal precondition violation.
type Resolver interface {
	CompleteMembers(d *Nominal) error
}
