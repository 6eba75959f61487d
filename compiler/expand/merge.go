package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

// emitMaskedMerge computes dst = old ^ ((old ^ val) & mask),
// which is old with the masked bits replaced by the ones from val.
func emitMaskedMerge(b *ir.Block, dst, old, val, mask, scratch ir.Reg) {
	if old == scratch || old == mask || scratch == mask {
		panic("masked merge: aliased registers")
	}

	b.Emit(ir.XOR, ir.R(scratch), ir.R(old), ir.R(val))
	b.Emit(ir.AND, ir.R(scratch), ir.R(scratch), ir.R(mask))
	b.Emit(ir.XOR, ir.R(dst), ir.R(old), ir.R(scratch))
}

// emitSext sign-extends the field in val: shamt is 32 minus field width minus field offset.
func emitSext(b *ir.Block, val, shamt ir.Reg) {
	b.Emit(ir.SLL_W, ir.R(val), ir.R(val), ir.R(shamt))
	b.Emit(ir.SRA_W, ir.R(val), ir.R(val), ir.R(shamt))
}

func emitMove(b *ir.Block, dst, src ir.Reg) {
	b.Emit(ir.OR, ir.R(dst), ir.R(src), ir.R(ir.Zero))
}

func emitFence(b *ir.Block, hint int64) {
	b.Emit(ir.DBAR, ir.Imm(hint))
}
