package expand

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/llsc/compiler/format"
	"github.com/slowlang/llsc/compiler/ir"
)

func TestInvariantViolations(t *testing.T) {
	for _, tc := range []struct {
		name string
		code string
		rule string
	}{
		{"aliased_dest_scratch", "PseudoAtomicLoadAdd32\t$r4, $r4, $r6, $r7, monotonic", "must be distinct"},
		{"aliased_mask", "PseudoMaskedAtomicLoadXor32\t$r4, $r5, $r6, $r7, $r5, acquire", "must be distinct"},
		{"aliased_addr_incr", "PseudoCmpXchg64\t$r4, $r5, $r6, $r6, $r8, seq_cst", "must be distinct"},
		{"zero_register", "PseudoAtomicSwap64\t$r4, $r5, $zero, $r7, monotonic", "zero register"},
		{"not_atomic", "PseudoAtomicSwap64\t$r4, $r5, $r6, $r7, 0", "bad ordering"},
		{"ordering_out_of_range", "PseudoAtomicSwap64\t$r4, $r5, $r6, $r7, 9", "bad ordering"},
		{"too_few", "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, 2", "operands, want"},
		{"no_shamt", "PseudoMaskedAtomicLoadMax32\t$r4, $r5, $r6, $r7, $r8, $r9, monotonic", "operands, want"},
		{"reg_for_ordering", "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, $r7, $r8", "immediate expected"},
		{"imm_for_reg", "PseudoAtomicLoadAdd32\t$r4, $r5, $r6, 5, monotonic", "register expected"},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			// the first placeholder is fine, the function must stay untouched anyway
			f := parseFunc(t, `
func f
entry:
	PseudoAtomicLoadAdd64	$r20, $r21, $r22, $r23, monotonic
	`+tc.code+`
	ret
`)

			before := string(format.Func(nil, f, format.Comments))

			n, err := Func(context.Background(), f)
			require.Error(t, err)
			assert.Equal(t, 0, n)

			assert.ErrorIs(t, err, ErrInvariant)
			assert.Contains(t, err.Error(), tc.rule)

			var ie *InvariantError
			if assert.True(t, errors.As(err, &ie)) {
				assert.Equal(t, "f", ie.Func)
				assert.Equal(t, ir.BlockID(0), ie.Block)
				assert.Equal(t, 1, ie.Index)
			}

			assert.Equal(t, before, string(format.Func(nil, f, format.Comments)))
		})
	}
}

func TestPlaceholderAfterBranch(t *testing.T) {
	f := ir.NewFunc("f")

	entry := f.AppendBlock()
	exit := f.AppendBlock()

	b := f.Block(entry)
	b.Emit(ir.BEQZ, ir.R(4), ir.Label(exit))
	b.Emit(ir.PseudoAtomicLoadAdd32, ir.R(5), ir.R(6), ir.R(7), ir.R(8), ir.Imm(int64(ir.Monotonic)))

	f.Block(exit).Emit(ir.RET)
	f.InferSuccs()

	_, err := Func(context.Background(), f)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Len(t, f.Layout, 2)
}

func TestCheckWidths(t *testing.T) {
	f := ir.NewFunc("f")
	b := f.Block(f.AppendBlock())
	b.Emit(ir.PseudoAtomicLoadAdd32)

	s := site{f: f, block: 0, index: 0}

	assert.NoError(t, check(s, binOp{op: Nand, masked: true, width: 32}))
	assert.ErrorIs(t, check(s, binOp{op: Nand, masked: true, width: 64}), ErrInvariant)
	assert.ErrorIs(t, check(s, binOp{op: Add, width: 16}), ErrInvariant)
	assert.ErrorIs(t, check(s, binOp{op: UMax, width: 32}), ErrInvariant)
	assert.ErrorIs(t, check(s, minMax{op: Add}), ErrInvariant)
	assert.ErrorIs(t, check(s, cmpXchg{masked: true, width: 64}), ErrInvariant)
}
