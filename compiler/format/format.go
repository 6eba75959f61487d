package format

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/slowlang/llsc/compiler/ir"
)

type (
	Flags int
)

const (
	Succs Flags = 1 << iota
	LiveIn

	Comments = Succs | LiveIn
)

func Package(b []byte, p *ir.Package, ff Flags) []byte {
	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b = Func(b, f, ff)
	}

	return b
}

// Func appends the listing of f in layout order.
// The listing is parsable back by the parse package.
func Func(b []byte, f *ir.Func, ff Flags) []byte {
	b = hfmt.Appendf(b, "func %s\n", f.Name)

	for _, id := range f.Layout {
		b = Block(b, f.Block(id), ff)
	}

	return b
}

func Block(b []byte, bb *ir.Block, ff Flags) []byte {
	b = bb.ID.Append(b)
	b = append(b, ':')

	if ff&Succs != 0 && len(bb.Succs) != 0 {
		b = append(b, "\t// succs"...)

		for _, s := range bb.Succs {
			b = append(b, ' ')
			b = s.Append(b)
		}
	}

	if ff&LiveIn != 0 && bb.LiveIn.Size() != 0 {
		if ff&Succs != 0 && len(bb.Succs) != 0 {
			b = append(b, ";"...)
		} else {
			b = append(b, "\t//"...)
		}

		b = append(b, " live-in"...)

		bb.LiveIn.Range(func(r ir.Reg) bool {
			b = append(b, ' ')
			b = r.Append(b)

			return true
		})
	}

	b = append(b, '\n')

	for _, x := range bb.Code {
		b = append(b, '\t')
		b = x.Append(b)
		b = append(b, '\n')
	}

	return b
}
