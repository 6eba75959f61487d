package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

// expandCmpXchg builds the compare-and-exchange loop:
//
//	head:
//	  ll.[w|d] dest, addr, 0
//	  and scratch, dest, mask         # masked only
//	  bne dest|scratch, cmpval, posttail
//	tail:
//	  dbar 0
//	  or scratch, newval, $zero       # full word
//	  andn scratch, dest, mask        # masked
//	  or scratch, scratch, newval     # masked
//	  sc.[w|d] scratch, addr, 0
//	  beqz scratch, head
//	  b done
//	posttail:
//	  dbar 0x700
//	done:
//
// Only a failed store loops, a failed comparison leaves through posttail.
func expandCmpXchg(s site, v cmpXchg, x operands) []ir.BlockID {
	f := s.f

	head := f.NewBlock()
	tail := f.NewBlock()
	post := f.NewBlock()
	done := split(s, head, tail, post)

	hb := f.Block(head)
	tb := f.Block(tail)
	pb := f.Block(post)

	hb.AddSucc(tail, post)
	tb.AddSucc(done, head)
	pb.AddSucc(done)

	hb.Emit(ir.LL(v.width), ir.R(x.Dest), ir.R(x.Addr), ir.Imm(0))

	if v.masked {
		hb.Emit(ir.AND, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Mask))
		hb.Emit(ir.BNE, ir.R(x.Scratch), ir.R(x.CmpVal), ir.Label(post))
	} else {
		hb.Emit(ir.BNE, ir.R(x.Dest), ir.R(x.CmpVal), ir.Label(post))
	}

	emitFence(tb, ir.FenceFull)

	if v.masked {
		tb.Emit(ir.ANDN, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Mask))
		tb.Emit(ir.OR, ir.R(x.Scratch), ir.R(x.Scratch), ir.R(x.NewVal))
	} else {
		emitMove(tb, x.Scratch, x.NewVal)
	}

	tb.Emit(ir.SC(v.width), ir.R(x.Scratch), ir.R(x.Addr), ir.Imm(0))
	tb.Emit(ir.BEQZ, ir.R(x.Scratch), ir.Label(head))
	tb.Emit(ir.B, ir.Label(done))

	emitFence(pb, ir.FenceClose)

	return []ir.BlockID{head, tail, post, done}
}
