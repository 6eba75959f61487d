package parse

import (
	"context"

	"github.com/sugawarayuuta/sonnet"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/ir"
)

type (
	jsonPackage struct {
		Path  string     `json:"path"`
		Funcs []jsonFunc `json:"funcs"`
	}

	jsonFunc struct {
		Name   string      `json:"name"`
		Blocks []jsonBlock `json:"blocks"`
	}

	jsonBlock struct {
		Label string      `json:"label"`
		Code  []jsonInstr `json:"code"`
	}

	jsonInstr struct {
		Op   string   `json:"op"`
		Args []string `json:"args"`
	}
)

// ParseJSON loads a package from its JSON form.
// Operands are written the same way as in the text listing.
//
//	{"funcs": [{"name": "f", "blocks": [{"label": "entry", "code": [{"op": "ret"}]}]}]}
func ParseJSON(ctx context.Context, name string, data []byte) (*ir.Package, error) {
	var jp jsonPackage

	err := sonnet.Unmarshal(data, &jp)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}

	pkg := &ir.Package{Path: jp.Path}
	if pkg.Path == "" {
		pkg.Path = name
	}

	for _, jf := range jp.Funcs {
		f, err := jf.build()
		if err != nil {
			return nil, errors.Wrap(err, "func %v", jf.Name)
		}

		pkg.Funcs = append(pkg.Funcs, f)
	}

	tlog.SpanFromContext(ctx).V("parse").Printw("json parsed", "name", name, "funcs", len(pkg.Funcs))

	return pkg, nil
}

func (jf jsonFunc) build() (*ir.Func, error) {
	if !isIdent(jf.Name) {
		return nil, errors.New("bad function name: %q", jf.Name)
	}

	p := &funcParser{
		f:      ir.NewFunc(jf.Name),
		labels: map[string]ir.BlockID{},
	}

	for i, jb := range jf.Blocks {
		id := p.f.AppendBlock()

		if jb.Label == "" {
			continue
		}

		if !isIdent(jb.Label) {
			return nil, errors.New("block %d: bad label: %q", i, jb.Label)
		}

		if _, dup := p.labels[jb.Label]; dup {
			return nil, errors.New("label redefined: %v", jb.Label)
		}

		p.labels[jb.Label] = id
	}

	for i, jb := range jf.Blocks {
		b := p.f.Block(p.f.Layout[i])

		for j, jx := range jb.Code {
			x, argi, err := p.instr(jx.Op, jx.Args)
			if err != nil {
				if argi >= 0 {
					return nil, errors.Wrap(err, "block %d: instr %d: arg %d", i, j, argi)
				}

				return nil, errors.Wrap(err, "block %d: instr %d", i, j)
			}

			b.Code = append(b.Code, x)
		}
	}

	return p.finish()
}
