package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// site is a placeholder position.
	site struct {
		f     *ir.Func
		block ir.BlockID
		index int
	}
)

func (s site) instr() ir.Instr {
	return s.f.Block(s.block).Code[s.index]
}

// split carves the block at the placeholder.
//
// The placeholder is removed, everything after it moves into a new done block,
// along with the block's successors. body blocks are placed between the block and done,
// the block itself falls into body[0] and has no other successors.
// Liveness of all touched blocks is stale afterwards.
func split(s site, body ...ir.BlockID) (done ir.BlockID) {
	f := s.f
	b := f.Block(s.block)

	if s.index < 0 || s.index >= len(b.Code) {
		panic(s.index)
	}

	if len(body) == 0 {
		panic("no body blocks")
	}

	for _, x := range b.Code[:s.index] {
		if x.Op.IsBranch() || x.Op.IsTerminator() {
			panic(x)
		}
	}

	done = f.NewBlock()
	d := f.Block(done)

	d.Code = append(d.Code, b.Code[s.index+1:]...)
	d.Succs = b.Succs

	b.Code = b.Code[:s.index:s.index]
	b.Succs = []ir.BlockID{body[0]}

	f.PlaceAfter(s.block, append(body, done)...)

	return done
}
