package expand

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/llsc/compiler/format"
	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/live"
)

// placeholderFunc builds "entry: <op> ...; ret" with registers numbered from 4.
func placeholderFunc(op ir.Op, o ir.Ordering) *ir.Func {
	f := ir.NewFunc(op.String())
	b := f.Block(f.AppendBlock())

	var args []ir.Operand

	r := ir.Reg(4)

	for _, role := range variants[op].layout() {
		if role == roleOrdering {
			args = append(args, ir.Imm(int64(o)))
			continue
		}

		args = append(args, ir.R(r))
		r++
	}

	b.Emit(op, args...)
	b.Emit(ir.RET)

	f.InferSuccs()

	return f
}

func sortedOps() []ir.Op {
	var l []ir.Op

	for op := range variants {
		l = append(l, op)
	}

	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })

	return l
}

func allOrderings() []ir.Ordering {
	return []ir.Ordering{ir.Unordered, ir.Monotonic, ir.Consume, ir.Acquire, ir.Release, ir.AcquireRelease, ir.SequentiallyConsistent}
}

type found struct {
	block ir.BlockID
	index int
}

func findOps(f *ir.Func, pred func(x ir.Instr) bool) (l []found) {
	for _, id := range f.Layout {
		for i, x := range f.Block(id).Code {
			if pred(x) {
				l = append(l, found{block: id, index: i})
			}
		}
	}

	return l
}

func isFence(hint int64) func(x ir.Instr) bool {
	return func(x ir.Instr) bool {
		return x.Op == ir.DBAR && x.Args[0].Imm == hint
	}
}

func TestAllPlaceholdersOneLoop(t *testing.T) {
	ctx := context.Background()

	for _, op := range sortedOps() {
		for _, o := range allOrderings() {
			f := placeholderFunc(op, o)
			live.Compute(ctx, f)

			n, err := Func(ctx, f)
			require.NoError(t, err, "%v %v", op, o)
			require.Equal(t, 1, n)
			require.NoError(t, Verify(f), "%v %v", op, o)

			ll := findOps(f, func(x ir.Instr) bool { return x.Op.IsLL() })
			sc := findOps(f, func(x ir.Instr) bool { return x.Op.IsSC() })

			require.Len(t, ll, 1, "%v %v", op, o)
			require.Len(t, sc, 1, "%v %v", op, o)

			assert.Equal(t, op.Width(), f.Block(ll[0].block).Code[ll[0].index].Op.Width())

			scb := f.Block(sc[0].block)
			assert.True(t, scb.HasSucc(ll[0].block), "%v %v: no back edge\n%s", op, o, format.Func(nil, f, format.Succs))

			back := scb.Code[sc[0].index+1]
			if assert.Equal(t, ir.BEQZ, back.Op) {
				assert.Equal(t, scb.Code[sc[0].index].Args[0], back.Args[0], "retry tests the sc result")
				assert.Equal(t, ir.Label(ll[0].block), back.Args[1])
			}
		}
	}
}

func TestOrderingFences(t *testing.T) {
	ctx := context.Background()

	for _, op := range sortedOps() {
		for _, o := range allOrderings() {
			f := placeholderFunc(op, o)
			v := variants[op]

			_, err := Func(ctx, f)
			require.NoError(t, err)

			full := findOps(f, isFence(ir.FenceFull))
			closing := findOps(f, isFence(ir.FenceClose))
			ll := findOps(f, func(x ir.Instr) bool { return x.Op.IsLL() })[0]
			sc := findOps(f, func(x ir.Instr) bool { return x.Op.IsSC() })[0]

			switch v.(type) {
			case binOp:
				assert.Empty(t, closing, "%v %v", op, o)

				if !o.Strong() {
					assert.Empty(t, full, "%v %v", op, o)
					break
				}

				if assert.Len(t, full, 1, "%v %v", op, o) {
					assert.Equal(t, found{block: ll.block, index: ll.index - 1}, full[0], "%v %v", op, o)
				}
			case minMax:
				assert.Len(t, closing, 1, "%v %v", op, o)

				if !o.Strong() {
					assert.Empty(t, full, "%v %v", op, o)
					break
				}

				if assert.Len(t, full, 1, "%v %v", op, o) {
					assert.Equal(t, found{block: ll.block, index: ll.index - 1}, full[0], "%v %v", op, o)
				}
			case cmpXchg:
				assert.Len(t, closing, 1, "%v %v", op, o)

				if assert.Len(t, full, 1, "%v %v", op, o) {
					assert.Equal(t, sc.block, full[0].block, "%v %v: fence inside the loop", op, o)
					assert.Less(t, full[0].index, sc.index)
				}
			}

			if len(closing) != 0 {
				post := f.Block(closing[0].block)

				assert.Len(t, post.Code, 1)
				assert.Len(t, post.Succs, 1)
				assert.Equal(t, f.Layout[len(f.Layout)-1], post.Succs[0], "falls into done")
			}
		}
	}
}

func TestMaskedMergeIdentity(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		old, val, mask := rnd.Uint32(), rnd.Uint32(), rnd.Uint32()

		switch i % 4 {
		case 1:
			mask = 0xff << (8 * (i / 4 % 4))
		case 2:
			mask = 0xffff << (16 * (i / 4 % 2))
		}

		assert.Equal(t, old&^mask|val&mask, old^((old^val)&mask))
	}
}

func TestMaskedMergeEmitted(t *testing.T) {
	f := ir.NewFunc("merge")
	b := f.Block(f.AppendBlock())

	emitMaskedMerge(b, 5, 4, 6, 7, 5)

	assert.Equal(t, []ir.Instr{
		ir.NewInstr(ir.XOR, ir.R(5), ir.R(4), ir.R(6)),
		ir.NewInstr(ir.AND, ir.R(5), ir.R(5), ir.R(7)),
		ir.NewInstr(ir.XOR, ir.R(5), ir.R(4), ir.R(5)),
	}, b.Code)

	assert.Panics(t, func() { emitMaskedMerge(b, 5, 4, 6, 7, 7) })
	assert.Panics(t, func() { emitMaskedMerge(b, 5, 4, 6, 7, 4) })
}

func TestIncrementalLiveness(t *testing.T) {
	ctx := context.Background()

	f := parseFunc(t, `
func loop
entry:
	or	$r10, $zero, $zero
head:
	PseudoAtomicLoadAdd32	$r4, $r5, $r6, $r7, seq_cst
	PseudoMaskedAtomicLoadMax32	$r12, $r13, $r14, $r6, $r7, $r15, acquire, $r16
	add.w	$r10, $r10, $r4
	bne	$r10, $r11, head
exit:
	PseudoMaskedCmpXchg32	$r4, $r5, $r6, $r10, $r11, $r15, monotonic
	or	$r17, $r4, $zero
	ret
`)

	_, err := Func(ctx, f)
	require.NoError(t, err)

	got := make([][]ir.Reg, len(f.Blocks))
	for _, b := range f.Blocks {
		got[b.ID] = b.LiveIn.Slice()

		e := live.BlockEffect(b)
		e.Use.Range(func(r ir.Reg) bool {
			assert.True(t, b.LiveIn.IsSet(r), "block %v: %v used but not live in", b.ID, r)
			return true
		})
	}

	live.Compute(ctx, f)

	for _, b := range f.Blocks {
		assert.Equal(t, b.LiveIn.Slice(), got[b.ID], "block %v", b.ID)
	}
}

func TestSplitMisuse(t *testing.T) {
	f := ir.NewFunc("f")
	entry := f.AppendBlock()
	f.Block(entry).Emit(ir.RET)

	s := site{f: f, block: entry, index: 3}
	assert.Panics(t, func() { split(s, f.NewBlock()) })

	s.index = 0
	assert.Panics(t, func() { split(s) })
}
