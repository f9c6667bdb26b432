package types

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// fingerprinter computes the structural fingerprint a factory probes the
// interning table with: an ordered FNV-1a hash of the kind tag, the child
// node identities, and the scalar fields. Child identities are the
// context-assigned node ids, so the fingerprint never depends on addresses.
type fingerprinter struct {
	ctx *TypeContext
	h   hash.Hash64
}

func (ctx *TypeContext) fingerprint(kind Kind) *fingerprinter {
	fp := &fingerprinter{ctx: ctx, h: fnv.New64a()}
	fp.u64(uint64(kind))
	return fp
}

func (fp *fingerprinter) u64(v uint64) *fingerprinter {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = fp.h.Write(buf[:])
	return fp
}

func (fp *fingerprinter) str(s string) *fingerprinter {
	fp.u64(uint64(len(s)))
	_, _ = fp.h.Write([]byte(s))
	return fp
}

func (fp *fingerprinter) boolean(b bool) *fingerprinter {
	if b {
		return fp.u64(1)
	}
	return fp.u64(0)
}

// ty hashes a child by identity. A nil child (absent parent, for instance)
// hashes as zero, which no allocated node ever uses.
func (fp *fingerprinter) ty(t Type) *fingerprinter {
	if t == nil {
		return fp.u64(0)
	}
	fp.ctx.checkOwned(t)
	return fp.u64(t.base().id)
}

func (fp *fingerprinter) types(ts []Type) *fingerprinter {
	fp.u64(uint64(len(ts)))
	for _, t := range ts {
		fp.ty(t)
	}
	return fp
}

// handle hashes a declaration handle by its context-assigned identity.
func (fp *fingerprinter) handle(h any) *fingerprinter {
	return fp.u64(fp.ctx.handleID(h))
}

func (fp *fingerprinter) sum() uint64 { return fp.h.Sum64() }
