package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

// expandMinMax builds the masked min/max loop:
//
//	head:
//	  dbar 0                          # strong orderings only
//	  ll.w dest, addr, 0
//	  and scratch2, dest, mask
//	  or scratch1, dest, $zero
//	  sll.w/sra.w scratch2, shamt     # signed only
//	  bge[u] ..., tail                # relation already holds
//	ifbody:
//	  <masked merge of incr into scratch1>
//	tail:
//	  sc.w scratch1, addr, 0
//	  beqz scratch1, head
//	posttail:
//	  dbar 0x700
//	done:
//
// The closing barrier is emitted for any ordering: the loop exit depends on loaded data.
func expandMinMax(s site, v minMax, x operands) []ir.BlockID {
	f := s.f

	head := f.NewBlock()
	ifbody := f.NewBlock()
	tail := f.NewBlock()
	post := f.NewBlock()
	done := split(s, head, ifbody, tail, post)

	hb := f.Block(head)
	ib := f.Block(ifbody)
	tb := f.Block(tail)
	pb := f.Block(post)

	hb.AddSucc(ifbody, tail)
	ib.AddSucc(tail)
	tb.AddSucc(head, post)
	pb.AddSucc(done)

	if x.Ordering.Strong() {
		emitFence(hb, ir.FenceFull)
	}

	hb.Emit(ir.LL_W, ir.R(x.Dest), ir.R(x.Addr), ir.Imm(0))
	hb.Emit(ir.AND, ir.R(x.Scratch2), ir.R(x.Dest), ir.R(x.Mask))
	emitMove(hb, x.Scratch, x.Dest)

	switch v.op {
	case UMax:
		hb.Emit(ir.BGEU, ir.R(x.Scratch2), ir.R(x.Incr), ir.Label(tail))
	case UMin:
		hb.Emit(ir.BGEU, ir.R(x.Incr), ir.R(x.Scratch2), ir.Label(tail))
	case Max:
		emitSext(hb, x.Scratch2, x.Shamt)
		hb.Emit(ir.BGE, ir.R(x.Scratch2), ir.R(x.Incr), ir.Label(tail))
	case Min:
		emitSext(hb, x.Scratch2, x.Shamt)
		hb.Emit(ir.BGE, ir.R(x.Incr), ir.R(x.Scratch2), ir.Label(tail))
	default:
		panic(v.op)
	}

	emitMaskedMerge(ib, x.Scratch, x.Dest, x.Incr, x.Mask, x.Scratch)

	tb.Emit(ir.SC_W, ir.R(x.Scratch), ir.R(x.Addr), ir.Imm(0))
	tb.Emit(ir.BEQZ, ir.R(x.Scratch), ir.Label(head))

	emitFence(pb, ir.FenceClose)

	return []ir.BlockID{head, ifbody, tail, post, done}
}
