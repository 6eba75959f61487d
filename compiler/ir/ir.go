package ir

import (
	"github.com/slowlang/llsc/compiler/set"
)

type (
	Reg     int
	BlockID int
	Op      int

	OperandKind uint8

	Operand struct {
		Kind  OperandKind
		Reg   Reg
		Imm   int64
		Block BlockID
	}

	Instr struct {
		Op   Op
		Args []Operand
	}

	Block struct {
		ID BlockID

		Code  []Instr
		Succs []BlockID

		LiveIn set.Bits[Reg]
	}

	Func struct {
		Name string

		Blocks []*Block  // arena, indexed by BlockID
		Layout []BlockID // emission order, Layout[0] is the entry
	}

	Package struct {
		Path string

		Funcs []*Func
	}
)

const (
	KindReg OperandKind = iota + 1
	KindImm
	KindBlock
)

// Zero is the hard-wired zero register.
const Zero Reg = 0

const NoBlock BlockID = -1

func R(r Reg) Operand        { return Operand{Kind: KindReg, Reg: r} }
func Imm(v int64) Operand    { return Operand{Kind: KindImm, Imm: v} }
func Label(b BlockID) Operand { return Operand{Kind: KindBlock, Block: b} }

func (x Operand) IsReg() bool   { return x.Kind == KindReg }
func (x Operand) IsImm() bool   { return x.Kind == KindImm }
func (x Operand) IsBlock() bool { return x.Kind == KindBlock }

func NewInstr(op Op, args ...Operand) Instr {
	return Instr{Op: op, Args: args}
}

// Defs returns registers written by the instruction.
func (x Instr) Defs() []Reg {
	inf := x.Op.info()

	var l []Reg

	for i := 0; i < inf.defs && i < len(x.Args); i++ {
		if x.Args[i].IsReg() {
			l = append(l, x.Args[i].Reg)
		}
	}

	return l
}

// Uses returns registers read by the instruction.
// Reads happen before writes.
func (x Instr) Uses() []Reg {
	inf := x.Op.info()

	var l []Reg

	for i, a := range x.Args {
		if !a.IsReg() {
			continue
		}
		if i < inf.defs && !(i == 0 && inf.useDef) {
			continue
		}

		l = append(l, a.Reg)
	}

	return l
}

// Target returns the branch target of a branch instruction.
func (x Instr) Target() (BlockID, bool) {
	if !x.Op.IsBranch() || len(x.Args) == 0 {
		return NoBlock, false
	}

	a := x.Args[len(x.Args)-1]
	if !a.IsBlock() {
		return NoBlock, false
	}

	return a.Block, true
}

func (b *Block) Terminated() bool {
	if len(b.Code) == 0 {
		return false
	}

	return b.Code[len(b.Code)-1].Op.IsTerminator()
}

func (b *Block) Emit(op Op, args ...Operand) {
	b.Code = append(b.Code, NewInstr(op, args...))
}

func (b *Block) AddSucc(s ...BlockID) {
	b.Succs = append(b.Succs, s...)
}

func (b *Block) HasSucc(s BlockID) bool {
	for _, x := range b.Succs {
		if x == s {
			return true
		}
	}

	return false
}
