package expand

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"

	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// InvariantError reports a malformed placeholder.
	// It is a defect of whatever produced the placeholder, so compilation must stop.
	InvariantError struct {
		Func  string
		Block ir.BlockID
		Index int
		Op    ir.Op
		Rule  string

		PC loc.PC // where the violation was detected
	}
)

var ErrInvariant = errors.New("invariant violation")

func invariant(s site, format string, args ...any) *InvariantError {
	return &InvariantError{
		Func:  s.f.Name,
		Block: s.block,
		Index: s.index,
		Op:    s.instr().Op,
		Rule:  fmt.Sprintf(format, args...),
		PC:    loc.Caller(1),
	}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %v: %v: instr %d: %v: %s (detected at %v)", ErrInvariant, e.Func, e.Block, e.Index, e.Op, e.Rule, e.PC)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }
