package ir

import (
	"tlog.app/go/errors"

	"github.com/slowlang/llsc/compiler/set"
)

func NewFunc(name string) *Func {
	return &Func{Name: name}
}

// NewBlock allocates an empty block in the arena.
// The block is not part of the layout until placed.
func (f *Func) NewBlock() BlockID {
	id := BlockID(len(f.Blocks))

	f.Blocks = append(f.Blocks, &Block{
		ID:     id,
		LiveIn: set.MakeBits[Reg](0),
	})

	return id
}

// AppendBlock allocates a block and places it at the end of the layout.
func (f *Func) AppendBlock() BlockID {
	id := f.NewBlock()
	f.Layout = append(f.Layout, id)

	return id
}

func (f *Func) Block(id BlockID) *Block {
	return f.Blocks[id]
}

func (f *Func) Entry() BlockID {
	if len(f.Layout) == 0 {
		return NoBlock
	}

	return f.Layout[0]
}

// Pos returns the layout position of the block or -1.
func (f *Func) Pos(id BlockID) int {
	for i, x := range f.Layout {
		if x == id {
			return i
		}
	}

	return -1
}

// PlaceAfter puts blocks into the layout right after the given one, in order.
func (f *Func) PlaceAfter(after BlockID, ids ...BlockID) {
	p := f.Pos(after)
	if p < 0 {
		panic(after)
	}

	l := make([]BlockID, 0, len(f.Layout)+len(ids))
	l = append(l, f.Layout[:p+1]...)
	l = append(l, ids...)
	l = append(l, f.Layout[p+1:]...)

	f.Layout = l
}

// Next returns the layout successor of the block or NoBlock.
func (f *Func) Next(id BlockID) BlockID {
	p := f.Pos(id)
	if p < 0 || p+1 >= len(f.Layout) {
		return NoBlock
	}

	return f.Layout[p+1]
}

// Preds computes predecessors of every block from successor lists.
func (f *Func) Preds() [][]BlockID {
	preds := make([][]BlockID, len(f.Blocks))

	for _, id := range f.Layout {
		for _, s := range f.Blocks[id].Succs {
			preds[s] = append(preds[s], id)
		}
	}

	return preds
}

// InferSuccs rebuilds successor lists from branch targets and fallthrough edges.
func (f *Func) InferSuccs() {
	for _, id := range f.Layout {
		b := f.Blocks[id]
		b.Succs = f.edges(b)
	}
}

func (f *Func) edges(b *Block) (l []BlockID) {
	add := func(s BlockID) {
		for _, x := range l {
			if x == s {
				return
			}
		}

		l = append(l, s)
	}

	for _, x := range b.Code {
		if t, ok := x.Target(); ok {
			add(t)
		}
	}

	if !b.Terminated() {
		if n := f.Next(b.ID); n != NoBlock {
			add(n)
		}
	}

	return l
}

// Verify checks the block graph is consistent.
func (f *Func) Verify() error {
	seen := set.MakeBitmap(len(f.Blocks))

	for _, id := range f.Layout {
		if id < 0 || int(id) >= len(f.Blocks) {
			return errors.New("layout: no such block: %d", id)
		}

		if seen.IsSet(int(id)) {
			return errors.New("layout: block_%d placed twice", id)
		}

		seen.Set(int(id))

		b := f.Blocks[id]
		if b.ID != id {
			return errors.New("block_%d: arena id mismatch: %d", id, b.ID)
		}

		branched := false

		for i, x := range b.Code {
			if !x.Op.Valid() {
				return errors.New("block_%d: instr %d: invalid opcode %d", id, i, int(x.Op))
			}

			if x.Op.IsBranch() {
				t, ok := x.Target()
				if !ok {
					return errors.New("block_%d: instr %d: %v: no target", id, i, x.Op)
				}

				if t < 0 || int(t) >= len(f.Blocks) {
					return errors.New("block_%d: instr %d: %v: no such block: %d", id, i, x.Op, t)
				}
			}

			if branched && !x.Op.IsBranch() && !x.Op.IsTerminator() {
				return errors.New("block_%d: instr %d: %v after a branch", id, i, x.Op)
			}

			branched = branched || x.Op.IsBranch()

			if x.Op.IsTerminator() && i+1 != len(b.Code) {
				return errors.New("block_%d: instr %d: %v in the middle of the block", id, i, x.Op)
			}
		}

		want := f.edges(b)

		if !sameBlocks(want, b.Succs) {
			return errors.New("block_%d: successors %v, code implies %v", id, b.Succs, want)
		}
	}

	for _, id := range f.Layout {
		for _, s := range f.Blocks[id].Succs {
			if !seen.IsSet(int(s)) {
				return errors.New("block_%d: successor block_%d is not placed", id, s)
			}
		}
	}

	return nil
}

func sameBlocks(x, y []BlockID) bool {
	if len(x) != len(y) {
		return false
	}

outer:
	for _, a := range x {
		for _, b := range y {
			if a == b {
				continue outer
			}
		}

		return false
	}

	return true
}
