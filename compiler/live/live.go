package live

import (
	"context"

	"nikand.dev/go/heap"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/set"
)

type (
	Regs = set.Bits[ir.Reg]

	// Effect is what a block does to registers regardless of control flow.
	Effect struct {
		Use  Regs // read before any write in the block
		Kill Regs // written in the block
	}

	worklist struct {
		heap.Heap[item]

		queued set.Bitmap
	}

	item struct {
		id  ir.BlockID
		pos int
	}
)

// BlockEffect computes upward exposed uses and kills of the block.
func BlockEffect(b *ir.Block) (e Effect) {
	e.Use = set.MakeBits[ir.Reg](0)
	e.Kill = set.MakeBits[ir.Reg](0)

	for _, x := range b.Code {
		for _, r := range x.Uses() {
			if r == ir.Zero || e.Kill.IsSet(r) {
				continue
			}

			e.Use.Set(r)
		}

		for _, r := range x.Defs() {
			if r == ir.Zero {
				continue
			}

			e.Kill.Set(r)
		}
	}

	return e
}

// Compute recomputes live-in sets of every placed block.
func Compute(ctx context.Context, f *ir.Func) {
	Recompute(ctx, f, f.Layout...)
}

// Recompute recomputes live-in sets of the given blocks.
// Live-in sets of other blocks are taken as they are.
func Recompute(ctx context.Context, f *ir.Func, ids ...ir.BlockID) {
	if len(ids) == 0 {
		return
	}

	tr := tlog.SpanFromContext(ctx)

	pos := make(map[ir.BlockID]int, len(f.Layout))
	for i, id := range f.Layout {
		pos[id] = i
	}

	mine := set.MakeBitmap(len(f.Blocks))
	eff := make(map[ir.BlockID]Effect, len(ids))

	for _, id := range ids {
		b := f.Block(id)

		mine.Set(int(id))
		eff[id] = BlockEffect(b)

		b.LiveIn = set.MakeBits[ir.Reg](0)
	}

	preds := f.Preds()

	w := newWorklist(len(f.Blocks))

	for _, id := range ids {
		w.push(id, pos[id])
	}

	iters := 0

	for w.Len() != 0 {
		id := w.pop()
		b := f.Block(id)
		e := eff[id]

		iters++

		out := set.MakeBits[ir.Reg](0)

		for _, s := range b.Succs {
			out.Merge(f.Block(s).LiveIn)
		}

		in := out.Copy()
		in.Substract(e.Kill)
		in.Merge(e.Use)

		if in.Equal(b.LiveIn) {
			continue
		}

		b.LiveIn = in

		for _, p := range preds[id] {
			if mine.IsSet(int(p)) {
				w.push(p, pos[p])
			}
		}
	}

	if tr.If("live") {
		for _, id := range ids {
			tr.Printw("live in", "block", id, "regs", f.Block(id).LiveIn)
		}

		tr.Printw("live fixpoint", "blocks", len(ids), "iters", iters)
	}
}

func newWorklist(n int) *worklist {
	return &worklist{
		Heap:   heap.Heap[item]{Less: laterFirst},
		queued: set.MakeBitmap(n),
	}
}

func (w *worklist) push(id ir.BlockID, pos int) {
	if w.queued.IsSet(int(id)) {
		return
	}

	w.queued.Set(int(id))
	w.Heap.Push(item{id: id, pos: pos})
}

func (w *worklist) pop() ir.BlockID {
	x := w.Heap.Pop()
	w.queued.Clear(int(x.id))

	return x.id
}

// Backward problem: later blocks first.
func laterFirst(d []item, i, j int) bool {
	return d[i].pos > d[j].pos
}
