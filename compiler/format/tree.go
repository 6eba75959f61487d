package format

import (
	"github.com/xlab/treeprint"

	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/set"
)

// Tree renders the block graph as a depth-first spanning tree from the entry.
// Edges back to already shown blocks are leaves marked with "^".
func Tree(f *ir.Func) string {
	t := treeprint.NewWithRoot("func " + f.Name)

	entry := f.Entry()
	if entry == ir.NoBlock {
		return t.String()
	}

	seen := set.MakeBitmap(len(f.Blocks))

	var walk func(t treeprint.Tree, id ir.BlockID)

	walk = func(t treeprint.Tree, id ir.BlockID) {
		seen.Set(int(id))

		b := f.Block(id)
		br := t.AddMetaBranch(len(b.Code), id.String())

		for _, x := range b.Code {
			br.AddNode(x.String())
		}

		for _, s := range b.Succs {
			if seen.IsSet(int(s)) {
				br.AddMetaNode("^", s.String())
				continue
			}

			walk(br, s)
		}
	}

	walk(t, entry)

	return t.String()
}
