package compiler

import (
	"context"
	"os"
	"path/filepath"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/back"
	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/parse"
)

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile parses a listing, lowers its atomic placeholders and prints the result.
// Names ending with .json are decoded as JSON.
func Compile(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	var pkg *ir.Package

	if filepath.Ext(name) == ".json" {
		pkg, err = parse.ParseJSON(ctx, name, text)
	} else {
		pkg, err = parse.Parse(ctx, name, text)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	c := back.New()

	obj, err = c.CompilePackage(ctx, nil, pkg)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return obj, nil
}
