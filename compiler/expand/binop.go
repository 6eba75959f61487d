package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

// expandBinOp builds a single self-looping block:
//
//	loop:
//	  dbar 0                      # strong orderings only
//	  ll.[w|d] dest, addr, 0
//	  <binop> scratch, dest, incr
//	  <masked merge>              # masked only
//	  sc.[w|d] scratch, addr, 0
//	  beqz scratch, loop
//	done:
func expandBinOp(s site, v binOp, x operands) []ir.BlockID {
	f := s.f

	loop := f.NewBlock()
	done := split(s, loop)

	b := f.Block(loop)
	b.AddSucc(loop, done)

	if x.Ordering.Strong() {
		emitFence(b, ir.FenceFull)
	}

	b.Emit(ir.LL(v.width), ir.R(x.Dest), ir.R(x.Addr), ir.Imm(0))

	switch v.op {
	case Xchg:
		if v.masked {
			b.Emit(ir.ADDI_W, ir.R(x.Scratch), ir.R(x.Incr), ir.Imm(0))
		} else {
			emitMove(b, x.Scratch, x.Incr)
		}
	case Add:
		b.Emit(pick(v.width, ir.ADD_W, ir.ADD_D), ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
	case Sub:
		b.Emit(pick(v.width, ir.SUB_W, ir.SUB_D), ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
	case And:
		b.Emit(ir.AND, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
	case Or:
		b.Emit(ir.OR, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
	case Xor:
		b.Emit(ir.XOR, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
	case Nand:
		b.Emit(ir.AND, ir.R(x.Scratch), ir.R(x.Dest), ir.R(x.Incr))
		b.Emit(ir.NOR, ir.R(x.Scratch), ir.R(x.Scratch), ir.R(ir.Zero))
	default:
		panic(v.op)
	}

	if v.masked {
		emitMaskedMerge(b, x.Scratch, x.Dest, x.Scratch, x.Mask, x.Scratch)
	}

	b.Emit(ir.SC(v.width), ir.R(x.Scratch), ir.R(x.Addr), ir.Imm(0))
	b.Emit(ir.BEQZ, ir.R(x.Scratch), ir.Label(loop))

	return []ir.BlockID{loop, done}
}

func pick(width int, w, d ir.Op) ir.Op {
	if width == 64 {
		return d
	}

	return w
}
