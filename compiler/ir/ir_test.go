package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupOp(t *testing.T) {
	for op := OpInvalid + 1; op < opLast; op++ {
		got, ok := LookupOp(op.String())
		if assert.True(t, ok, "op %v", op) {
			assert.Equal(t, op, got)
		}
	}

	op, ok := LookupOp("LL.W")
	assert.True(t, ok)
	assert.Equal(t, LL_W, op)

	_, ok = LookupOp("pseudoatomicswap32")
	assert.False(t, ok, "placeholders are case sensitive")

	_, ok = LookupOp("amadd.w")
	assert.False(t, ok)
}

func TestOpTable(t *testing.T) {
	for op := OpInvalid + 1; op < opLast; op++ {
		if !op.IsPseudo() {
			assert.Equal(t, -1, op.OrderingArg(), "op %v", op)
			continue
		}

		assert.Contains(t, []int{32, 64}, op.Width(), "op %v", op)
		assert.Greater(t, op.OrderingArg(), op.NumDefs(), "op %v", op)
	}

	assert.True(t, B.IsBranch())
	assert.True(t, B.IsTerminator())
	assert.True(t, BEQZ.IsBranch())
	assert.False(t, BEQZ.IsTerminator())
	assert.True(t, RET.IsTerminator())
	assert.False(t, RET.IsBranch())

	assert.Equal(t, LL_D, LL(64))
	assert.Equal(t, SC_W, SC(32))
}

func TestOrdering(t *testing.T) {
	for o := NotAtomic; o <= SequentiallyConsistent; o++ {
		p, ok := ParseOrdering(o.String())
		assert.True(t, ok)
		assert.Equal(t, o, p)
	}

	assert.False(t, NotAtomic.Valid())
	assert.False(t, Ordering(8).Valid())
	assert.True(t, Unordered.Valid())

	assert.False(t, Unordered.Strong())
	assert.False(t, Monotonic.Strong())
	assert.True(t, Acquire.Strong())
	assert.True(t, SequentiallyConsistent.Strong())
}

func TestDefsUses(t *testing.T) {
	x := NewInstr(SC_W, R(5), R(6), Imm(0))
	assert.Equal(t, []Reg{5}, x.Defs())
	assert.Equal(t, []Reg{5, 6}, x.Uses())

	x = NewInstr(ADD_D, R(5), R(4), R(7))
	assert.Equal(t, []Reg{5}, x.Defs())
	assert.Equal(t, []Reg{4, 7}, x.Uses())

	x = NewInstr(BEQZ, R(5), Label(1))
	assert.Empty(t, x.Defs())
	assert.Equal(t, []Reg{5}, x.Uses())

	id, ok := x.Target()
	assert.True(t, ok)
	assert.Equal(t, BlockID(1), id)

	_, ok = NewInstr(ADD_D, R(1), R(2), R(3)).Target()
	assert.False(t, ok)
}

func TestInstrText(t *testing.T) {
	assert.Equal(t, "ll.w\t$r4, $r6, 0", NewInstr(LL_W, R(4), R(6), Imm(0)).String())
	assert.Equal(t, "dbar\t0x700", NewInstr(DBAR, Imm(FenceClose)).String())
	assert.Equal(t, "or\t$r5, $r7, $zero", NewInstr(OR, R(5), R(7), R(Zero)).String())
	assert.Equal(t, "beqz\t$r5, block_1", NewInstr(BEQZ, R(5), Label(1)).String())
	assert.Equal(t, "ret", NewInstr(RET).String())

	x := NewInstr(PseudoAtomicLoadAdd32, R(4), R(5), R(6), R(7), Imm(int64(AcquireRelease)))
	assert.Equal(t, "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, $r7, acq_rel", x.String())

	x = NewInstr(PseudoAtomicLoadAdd32, R(4), R(5), R(6), R(7), Imm(9))
	assert.Equal(t, "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, $r7, 9", x.String())

	x = NewInstr(PseudoAtomicLoadAdd32, R(4), R(5), R(6), R(7), Imm(-1))
	assert.Equal(t, "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, $r7, -1", x.String())
}

func TestLayout(t *testing.T) {
	f := NewFunc("f")

	a := f.AppendBlock()
	c := f.AppendBlock()
	b := f.NewBlock()

	assert.Equal(t, a, f.Entry())
	assert.Equal(t, -1, f.Pos(b))

	f.PlaceAfter(a, b)

	assert.Equal(t, []BlockID{a, b, c}, f.Layout)
	assert.Equal(t, c, f.Next(b))
	assert.Equal(t, NoBlock, f.Next(c))

	assert.Panics(t, func() { f.PlaceAfter(BlockID(10), b) })
}

func TestInferSuccsVerify(t *testing.T) {
	f := NewFunc("f")

	entry := f.AppendBlock()
	loop := f.AppendBlock()
	exit := f.AppendBlock()

	f.Block(entry).Emit(OR, R(4), R(Zero), R(Zero))
	f.Block(loop).Emit(ADDI_W, R(4), R(4), Imm(1))
	f.Block(loop).Emit(BNE, R(4), R(5), Label(loop))
	f.Block(exit).Emit(RET)

	f.InferSuccs()

	assert.Equal(t, []BlockID{loop}, f.Block(entry).Succs)
	assert.Equal(t, []BlockID{loop, exit}, f.Block(loop).Succs)
	assert.Empty(t, f.Block(exit).Succs)

	require.NoError(t, f.Verify())

	preds := f.Preds()
	assert.ElementsMatch(t, []BlockID{entry, loop}, preds[loop])

	f.Block(loop).Succs = []BlockID{exit}
	assert.Error(t, f.Verify())

	f.InferSuccs()
	require.NoError(t, f.Verify())

	f.Block(loop).Emit(ADDI_W, R(4), R(4), Imm(1))
	f.InferSuccs()
	assert.Error(t, f.Verify(), "instruction after a branch")
}

func TestVerifyLayout(t *testing.T) {
	f := NewFunc("f")

	a := f.AppendBlock()
	b := f.NewBlock()

	f.Block(a).Emit(B, Label(b))
	f.InferSuccs()

	assert.Error(t, f.Verify(), "successor not placed")

	f.PlaceAfter(a, b)
	f.Block(b).Emit(RET)
	f.InferSuccs()

	require.NoError(t, f.Verify())

	f.Layout = append(f.Layout, a)
	assert.Error(t, f.Verify(), "placed twice")
}
