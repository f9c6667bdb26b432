package types

// RecursiveProperties is the derived property bitset of a type node: the
// bitwise union of the direct children's bitsets plus whatever is intrinsic
// to the node itself. It is computed once at construction and never changes.
//
// The numeric values of the first three bits are a contract with
// collaborators and must stay stable:
//
//	0x1  a type variable occurs somewhere beneath this node
//	0x2  a generic parameter or dependent member occurs beneath this node
//	0x4  this node cannot be held as an ordinary first-class value
//
// The fourth bit is internal: it records archetype presence so substitution
// can skip subtrees that cannot possibly change.
type RecursiveProperties uint8

const (
	propHasTypeVariable     RecursiveProperties = 0x1
	propIsDependent         RecursiveProperties = 0x2
	propIsNotMaterializable RecursiveProperties = 0x4
	propHasArchetype        RecursiveProperties = 0x8
)

func (p RecursiveProperties) HasTypeVariable() bool { return p&propHasTypeVariable != 0 }
func (p RecursiveProperties) IsDependent() bool     { return p&propIsDependent != 0 }
func (p RecursiveProperties) IsMaterializable() bool {
	return p&propIsNotMaterializable == 0
}
func (p RecursiveProperties) hasArchetype() bool { return p&propHasArchetype != 0 }

// Bits exposes the raw encoding; the low three bits follow the documented
// layout.
func (p RecursiveProperties) Bits() uint8 { return uint8(p) }

func (p RecursiveProperties) union(other RecursiveProperties) RecursiveProperties {
	return p | other
}

func (p RecursiveProperties) without(other RecursiveProperties) RecursiveProperties {
	return p &^ other
}

// propertiesOf folds the bitsets of a child list.
func propertiesOf(children ...Type) RecursiveProperties {
	var p RecursiveProperties
	for _, c := range children {
		p |= c.Properties()
	}
	return p
}
