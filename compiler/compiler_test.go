package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	obj, err := Compile(context.Background(), "add.s", []byte(`
func add
	PseudoAtomicLoadAdd32	$r4, $r5, $r6, $r7, monotonic
	ret
`))
	require.NoError(t, err)

	assert.Contains(t, string(obj), "ll.w\t$r4, $r6, 0\n\tadd.w\t$r5, $r4, $r7\n\tsc.w\t$r5, $r6, 0\n\tbeqz\t$r5, block_1\n")
	assert.NotContains(t, string(obj), "dbar")
}

func TestCompileFileJSON(t *testing.T) {
	name := filepath.Join(t.TempDir(), "swap.json")

	err := os.WriteFile(name, []byte(`{"funcs": [{"name": "swap", "blocks": [{"code": [
		{"op": "PseudoAtomicSwap32", "args": ["$r4", "$r5", "$r6", "$r7", "seq_cst"]},
		{"op": "ret"}
	]}]}]}`), 0o600)
	require.NoError(t, err)

	obj, err := CompileFile(context.Background(), name)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(obj), "// package "+name+"\n"))
	assert.Contains(t, string(obj), "dbar\t0\n\tll.w\t$r4, $r6, 0\n\tor\t$r5, $r7, $zero\n")
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(context.Background(), "bad.s", []byte("func f\n\tnope\n"))
	assert.Error(t, err)

	_, err = CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.s"))
	assert.Error(t, err)
}
