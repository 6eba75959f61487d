package expand

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/live"
)

type (
	placeholder struct {
		site
		variant
		operands

		op ir.Op
	}
)

// Package expands atomic placeholders in every function of the package.
func Package(ctx context.Context, p *ir.Package) (n int, err error) {
	for _, f := range p.Funcs {
		m, err := Func(ctx, f)
		n += m
		if err != nil {
			return n, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return n, nil
}

// Func replaces every atomic placeholder in f by an LL/SC loop.
// It returns the number of expanded placeholders.
//
// All placeholders are checked before the first one is expanded,
// so f is left untouched if any of them is malformed.
// Running it again on the result is a no-op.
// Live-in sets of f are recomputed from scratch.
func Func(ctx context.Context, f *ir.Func) (n int, err error) {
	tr := tlog.SpanFromContext(ctx)

	var todo []placeholder

	for _, id := range f.Layout {
		b := f.Block(id)

		for i, x := range b.Code {
			if !x.Op.IsPseudo() {
				continue
			}

			p, err := inspect(site{f: f, block: id, index: i})
			if err != nil {
				return 0, err
			}

			todo = append(todo, p)
		}
	}

	if len(todo) == 0 {
		return 0, nil
	}

	live.Compute(ctx, f)

	for li := 0; li < len(f.Layout); li++ {
		id := f.Layout[li]
		b := f.Block(id)

		for i := 0; i < len(b.Code); i++ {
			x := b.Code[i]
			if !x.Op.IsPseudo() {
				continue
			}

			// placeholders are visited in the same order as when inspected,
			// only their positions changed
			p := todo[n]
			p.site = site{f: f, block: id, index: i}

			if x.Op != p.op {
				panic(x)
			}

			blocks := p.expand()

			live.Recompute(ctx, f, append([]ir.BlockID{id}, blocks...)...)

			if tr.If("expand") {
				tr.Printw("expanded", "func", f.Name, "block", id, "i", i, "op", x.Op, "ordering", p.Ordering, "blocks", blocks)
			}

			n++

			break // the rest of the block moved to done
		}
	}

	if n != len(todo) {
		panic(n)
	}

	return n, nil
}

func inspect(s site) (p placeholder, err error) {
	x := s.instr()

	v, ok := variants[x.Op]
	if !ok {
		panic(x.Op)
	}

	err = check(s, v)
	if err != nil {
		return p, err
	}

	for _, y := range s.f.Block(s.block).Code[:s.index] {
		if y.Op.IsBranch() || y.Op.IsTerminator() {
			return p, invariant(s, "placeholder follows %v", y.Op)
		}
	}

	ops, err := decode(s, v.layout())
	if err != nil {
		return p, err
	}

	return placeholder{site: s, variant: v, operands: ops, op: x.Op}, nil
}

func (p placeholder) expand() []ir.BlockID {
	switch v := p.variant.(type) {
	case binOp:
		return expandBinOp(p.site, v, p.operands)
	case minMax:
		return expandMinMax(p.site, v, p.operands)
	case cmpXchg:
		return expandCmpXchg(p.site, v, p.operands)
	default:
		panic(v)
	}
}

// Verify checks no placeholder survived and the block graph is consistent.
func Verify(f *ir.Func) error {
	for _, id := range f.Layout {
		for i, x := range f.Block(id).Code {
			if x.Op.IsPseudo() {
				return errors.New("%v: instr %d: placeholder left: %v", id, i, x)
			}
		}
	}

	return f.Verify()
}
