package back

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/expand"
	"github.com/slowlang/llsc/compiler/format"
	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/live"
)

type (
	// Compiler lowers atomic placeholders and prints the resulting listing.
	Compiler struct {
		Flags format.Flags

		// Expanded is the number of placeholders lowered so far.
		Expanded int
	}
)

func New() *Compiler {
	return &Compiler{Flags: format.Comments}
}

func (c *Compiler) CompilePackage(ctx context.Context, b []byte, pkg *ir.Package) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile package", "name", pkg.Path)
	defer tr.Finish("err", &err)

	if tr.If("dump_pkg") {
		for _, f := range pkg.Funcs {
			tr.Printw("func", "name", f.Name, "blocks", len(f.Blocks), "layout", f.Layout)
		}
	}

	b = hfmt.Appendf(b, "// package %s\n", pkg.Path)

	for _, f := range pkg.Funcs {
		b = append(b, '\n')

		b, err = c.compileFunc(ctx, b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	if tr.If("omit_out") {
		b = nil
	}

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, f *ir.Func) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile func", "name", f.Name)
	defer tr.Finish("err", &err)

	if tr.If("hide_func_" + f.Name) {
		tr.Printw("hide func logs")
		tr.Logger = nil
		ctx = tlog.ContextWithSpan(ctx, tr)
	}

	live.Compute(ctx, f)

	if tr.If("dump_func_before") {
		tr.Printw("func before\n" + string(format.Func(nil, f, format.Comments)))
	}

	n, err := expand.Func(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "expand")
	}

	c.Expanded += n

	err = expand.Verify(f)
	if err != nil {
		return nil, errors.Wrap(err, "verify")
	}

	if tr.If("dump_func_after") {
		tr.Printw("func after\n"+string(format.Func(nil, f, format.Comments)), "expanded", n)
	}

	b = format.Func(b, f, c.Flags)

	return b, nil
}
