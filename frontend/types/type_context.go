package types

import (
	"log/slog"

	"github.com/cottand/sable/frontend/decls"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Arena selects which allocation region of a context a node lives in.
// Constraint-solver types (anything containing an inference variable) go to
// the constraint arena so they can be discarded in bulk when the solver is
// torn down, without invalidating permanent types.
type Arena uint8

const (
	ArenaPermanent Arena = iota
	ArenaConstraint

	numArenas = 2
)

// internTable is the content-addressed cache behind every factory:
// fingerprint to bucket of nodes, where a bucket holds the (rare) nodes
// whose distinct structural values collide on one fingerprint.
type internTable map[uint64][]Type

// TypeContext owns every type node: the arenas, the interning tables, the
// fresh-identifier counters, and the well-known declarations sugar desugars
// to. It is threaded explicitly through every factory call and provides no
// internal synchronization: one writer at a time.
type TypeContext struct {
	id     uuid.UUID
	logger *slog.Logger

	tables [numArenas]internTable

	nextNodeID   uint64
	nextOpenedID uint64
	nextVarID    uint64

	// handleIDs assigns stable small identities to declaration handles so
	// fingerprints can include them.
	handleIDs map[any]uint64

	// witnesses maps (nominal declaration, associated type name) to the
	// concrete type witness, for dependent-member resolution against
	// concrete bases.
	witnesses map[witnessKey]Type

	stdModule    *decls.Module
	optionalDecl *decls.Nominal
	sliceDecl    *decls.Nominal

	errorTy *ErrorType
}

type witnessKey struct {
	decl *decls.Nominal
	name string
}

// Option configures NewTypeContext.
type Option func(*TypeContext)

// WithOptionalDecl overrides the declaration that optional sugar desugars
// to. It must be a generic declaration with exactly one parameter.
func WithOptionalDecl(d *decls.Nominal) Option {
	return func(ctx *TypeContext) { ctx.optionalDecl = d }
}

// WithSliceDecl overrides the declaration that array sugar desugars to.
func WithSliceDecl(d *decls.Nominal) Option {
	return func(ctx *TypeContext) { ctx.sliceDecl = d }
}

func NewTypeContext(opts ...Option) *TypeContext {
	ctx := &TypeContext{
		id:        uuid.New(),
		handleIDs: make(map[any]uint64),
		witnesses: make(map[witnessKey]Type),
		stdModule: decls.NewModule("std"),
	}
	ctx.logger = logger.With("context", ctx.id.String())
	for i := range ctx.tables {
		ctx.tables[i] = make(internTable)
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.optionalDecl == nil {
		ctx.optionalDecl = decls.NewEnum(ctx.stdModule, "Optional", decls.NewGenericParam("T", 0, 0))
	}
	if ctx.sliceDecl == nil {
		ctx.sliceDecl = decls.NewStruct(ctx.stdModule, "Slice", decls.NewGenericParam("T", 0, 0))
	}
	checkWellKnown(ctx.optionalDecl, "optional")
	checkWellKnown(ctx.sliceDecl, "slice")

	ctx.errorTy = &ErrorType{}
	ctx.initBase(&ctx.errorTy.typeBase, ctx.errorTy, KindError, 0, ArenaPermanent, true)
	return ctx
}

func checkWellKnown(d *decls.Nominal, role string) {
	if len(d.GenericParams()) != 1 {
		fatalf("%s declaration %s must take exactly one generic parameter", role, d)
	}
}

func (ctx *TypeContext) ID() uuid.UUID { return ctx.id }

// StdModule is the module owning the context's default well-known
// declarations.
func (ctx *TypeContext) StdModule() *decls.Module { return ctx.stdModule }

func (ctx *TypeContext) OptionalDecl() *decls.Nominal { return ctx.optionalDecl }
func (ctx *TypeContext) SliceDecl() *decls.Nominal    { return ctx.sliceDecl }

// checkOwned traps on a node from a foreign context: contexts are isolated
// and never share nodes (see DESIGN.md on multi-context scoping).
func (ctx *TypeContext) checkOwned(ts ...Type) {
	for _, t := range ts {
		if t == nil {
			continue
		}
		if other := t.Context(); other != ctx {
			fatalf("type %s belongs to context %s, not %s", t, other.id, ctx.id)
		}
	}
}

func (ctx *TypeContext) handleID(h any) uint64 {
	if id, ok := ctx.handleIDs[h]; ok {
		return id
	}
	id := uint64(len(ctx.handleIDs)) + 1
	ctx.handleIDs[h] = id
	return id
}

// arenaFor routes nodes carrying inference variables to the constraint
// arena.
func arenaFor(props RecursiveProperties) Arena {
	if props.HasTypeVariable() {
		return ArenaConstraint
	}
	return ArenaPermanent
}

// intern returns the unique node for a structural value: probe the table
// scoped to the arena, and only allocate through build on a miss.
func (ctx *TypeContext) intern(arena Arena, fp uint64, eq func(Type) bool, build func() Type) Type {
	for _, t := range ctx.tables[arena][fp] {
		if eq(t) {
			return t
		}
	}
	t := build()
	ctx.tables[arena][fp] = append(ctx.tables[arena][fp], t)
	return t
}

// initBase fills in the write-once fields of a freshly allocated node and
// decides canonicality: a node is canonical when its kind can be canonical
// at all, canonicalOK holds (kind-specific extra conditions, e.g. a minimal
// sorted composition), and every child is already canonical.
func (ctx *TypeContext) initBase(b *typeBase, self Type, kind Kind, props RecursiveProperties, arena Arena, canonicalOK bool, children ...Type) {
	ctx.nextNodeID++
	b.kind = kind
	b.props = props
	b.ctx = ctx
	b.arena = arena
	b.id = ctx.nextNodeID
	if kind.neverCanonical() || !canonicalOK {
		return
	}
	for _, c := range children {
		if c != nil && !c.IsCanonical() {
			return
		}
	}
	b.canonical = self
}

// setCanonical fills the lazily-computed slot. One-shot and monotonic;
// racing writes are excluded by the single-writer assumption, refilling with
// a different value is a bug.
func (b *typeBase) setCanonical(can Type) {
	if b.canonical != nil && b.canonical != can {
		fatalf("canonical slot of %s resolved twice with different results", b.kind)
	}
	b.canonical = can
}

// DropConstraintArena discards every node allocated in the constraint arena
// in bulk. Permanent types never reference constraint types, so they stay
// valid.
func (ctx *TypeContext) DropConstraintArena() {
	n := len(ctx.tables[ArenaConstraint])
	ctx.tables[ArenaConstraint] = make(internTable)
	ctx.logger.Debug("dropped constraint arena", "buckets", n)
}

// RegisterTypeWitness records the concrete type witnessing an associated
// type requirement for one nominal declaration. Substitution consults this
// when resolving a dependent member against a concrete base.
func (ctx *TypeContext) RegisterTypeWitness(d *decls.Nominal, assocName string, witness Type) {
	ctx.checkOwned(witness)
	key := witnessKey{decl: d, name: assocName}
	if prev, ok := ctx.witnesses[key]; ok && prev != witness {
		fatalf("type witness for %s.%s registered twice", d, assocName)
	}
	ctx.witnesses[key] = witness
}

func (ctx *TypeContext) typeWitness(d *decls.Nominal, assocName string) (Type, bool) {
	w, ok := ctx.witnesses[witnessKey{decl: d, name: assocName}]
	return w, ok
}

func fatalf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}
