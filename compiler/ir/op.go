package ir

import "strings"

type (
	opInfo struct {
		name string

		defs   int  // leading register operands written
		useDef bool // the first def is read as well (sc)
		branch bool // the last operand is a block
		term   bool // never falls through
		pseudo bool

		width int // memory access width in bits
		order int // index of the ordering immediate
	}
)

const (
	OpInvalid Op = iota

	// native

	LL_W
	LL_D
	SC_W
	SC_D
	ADD_W
	ADD_D
	SUB_W
	SUB_D
	ADDI_W
	AND
	OR
	XOR
	NOR
	ANDN
	SLL_W
	SRA_W
	DBAR
	B
	BEQZ
	BNE
	BGE
	BGEU
	RET

	// placeholders

	PseudoAtomicSwap32
	PseudoAtomicSwap64
	PseudoAtomicLoadAdd32
	PseudoAtomicLoadAdd64
	PseudoAtomicLoadSub32
	PseudoAtomicLoadSub64
	PseudoAtomicLoadAnd32
	PseudoAtomicLoadAnd64
	PseudoAtomicLoadOr32
	PseudoAtomicLoadOr64
	PseudoAtomicLoadXor32
	PseudoAtomicLoadXor64
	PseudoAtomicLoadNand32
	PseudoAtomicLoadNand64

	PseudoMaskedAtomicSwap32
	PseudoMaskedAtomicLoadAdd32
	PseudoMaskedAtomicLoadSub32
	PseudoMaskedAtomicLoadAnd32
	PseudoMaskedAtomicLoadOr32
	PseudoMaskedAtomicLoadXor32
	PseudoMaskedAtomicLoadNand32

	PseudoMaskedAtomicLoadUMax32
	PseudoMaskedAtomicLoadUMin32
	PseudoMaskedAtomicLoadMax32
	PseudoMaskedAtomicLoadMin32

	PseudoCmpXchg32
	PseudoCmpXchg64
	PseudoMaskedCmpXchg32

	opLast
)

// Fence hints.
const (
	FenceFull  = 0
	FenceClose = 0x700
)

var ops = [opLast]opInfo{
	OpInvalid: {name: "invalid", order: -1},

	LL_W:   {name: "ll.w", defs: 1, width: 32, order: -1},
	LL_D:   {name: "ll.d", defs: 1, width: 64, order: -1},
	SC_W:   {name: "sc.w", defs: 1, useDef: true, width: 32, order: -1},
	SC_D:   {name: "sc.d", defs: 1, useDef: true, width: 64, order: -1},
	ADD_W:  {name: "add.w", defs: 1, order: -1},
	ADD_D:  {name: "add.d", defs: 1, order: -1},
	SUB_W:  {name: "sub.w", defs: 1, order: -1},
	SUB_D:  {name: "sub.d", defs: 1, order: -1},
	ADDI_W: {name: "addi.w", defs: 1, order: -1},
	AND:    {name: "and", defs: 1, order: -1},
	OR:     {name: "or", defs: 1, order: -1},
	XOR:    {name: "xor", defs: 1, order: -1},
	NOR:    {name: "nor", defs: 1, order: -1},
	ANDN:   {name: "andn", defs: 1, order: -1},
	SLL_W:  {name: "sll.w", defs: 1, order: -1},
	SRA_W:  {name: "sra.w", defs: 1, order: -1},
	DBAR:   {name: "dbar", order: -1},
	B:      {name: "b", branch: true, term: true, order: -1},
	BEQZ:   {name: "beqz", branch: true, order: -1},
	BNE:    {name: "bne", branch: true, order: -1},
	BGE:    {name: "bge", branch: true, order: -1},
	BGEU:   {name: "bgeu", branch: true, order: -1},
	RET:    {name: "ret", term: true, order: -1},

	PseudoAtomicSwap32:     {name: "PseudoAtomicSwap32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicSwap64:     {name: "PseudoAtomicSwap64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadAdd32:  {name: "PseudoAtomicLoadAdd32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadAdd64:  {name: "PseudoAtomicLoadAdd64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadSub32:  {name: "PseudoAtomicLoadSub32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadSub64:  {name: "PseudoAtomicLoadSub64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadAnd32:  {name: "PseudoAtomicLoadAnd32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadAnd64:  {name: "PseudoAtomicLoadAnd64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadOr32:   {name: "PseudoAtomicLoadOr32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadOr64:   {name: "PseudoAtomicLoadOr64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadXor32:  {name: "PseudoAtomicLoadXor32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadXor64:  {name: "PseudoAtomicLoadXor64", defs: 2, pseudo: true, width: 64, order: 4},
	PseudoAtomicLoadNand32: {name: "PseudoAtomicLoadNand32", defs: 2, pseudo: true, width: 32, order: 4},
	PseudoAtomicLoadNand64: {name: "PseudoAtomicLoadNand64", defs: 2, pseudo: true, width: 64, order: 4},

	PseudoMaskedAtomicSwap32:     {name: "PseudoMaskedAtomicSwap32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadAdd32:  {name: "PseudoMaskedAtomicLoadAdd32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadSub32:  {name: "PseudoMaskedAtomicLoadSub32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadAnd32:  {name: "PseudoMaskedAtomicLoadAnd32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadOr32:   {name: "PseudoMaskedAtomicLoadOr32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadXor32:  {name: "PseudoMaskedAtomicLoadXor32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoMaskedAtomicLoadNand32: {name: "PseudoMaskedAtomicLoadNand32", defs: 2, pseudo: true, width: 32, order: 5},

	PseudoMaskedAtomicLoadUMax32: {name: "PseudoMaskedAtomicLoadUMax32", defs: 3, pseudo: true, width: 32, order: 6},
	PseudoMaskedAtomicLoadUMin32: {name: "PseudoMaskedAtomicLoadUMin32", defs: 3, pseudo: true, width: 32, order: 6},
	PseudoMaskedAtomicLoadMax32:  {name: "PseudoMaskedAtomicLoadMax32", defs: 3, pseudo: true, width: 32, order: 6},
	PseudoMaskedAtomicLoadMin32:  {name: "PseudoMaskedAtomicLoadMin32", defs: 3, pseudo: true, width: 32, order: 6},

	PseudoCmpXchg32:       {name: "PseudoCmpXchg32", defs: 2, pseudo: true, width: 32, order: 5},
	PseudoCmpXchg64:       {name: "PseudoCmpXchg64", defs: 2, pseudo: true, width: 64, order: 5},
	PseudoMaskedCmpXchg32: {name: "PseudoMaskedCmpXchg32", defs: 2, pseudo: true, width: 32, order: 6},
}

var byName map[string]Op

func init() {
	byName = make(map[string]Op, len(ops))

	for op := OpInvalid + 1; op < opLast; op++ {
		byName[ops[op].name] = op
	}
}

// LookupOp finds an opcode by its mnemonic.
// Native mnemonics are case-insensitive.
func LookupOp(name string) (Op, bool) {
	if op, ok := byName[name]; ok {
		return op, true
	}

	op, ok := byName[strings.ToLower(name)]

	return op, ok
}

func (op Op) info() opInfo {
	if op <= OpInvalid || op >= opLast {
		return ops[OpInvalid]
	}

	return ops[op]
}

func (op Op) String() string { return op.info().name }

func (op Op) Valid() bool        { return op > OpInvalid && op < opLast }
func (op Op) IsPseudo() bool     { return op.info().pseudo }
func (op Op) IsBranch() bool     { return op.info().branch }
func (op Op) IsTerminator() bool { return op.info().term }

// Width is the memory access width in bits, 0 for non-memory ops.
func (op Op) Width() int { return op.info().width }

// OrderingArg is the index of the ordering immediate of a placeholder, or -1.
func (op Op) OrderingArg() int { return op.info().order }

// NumDefs is the number of leading register operands written by op.
func (op Op) NumDefs() int { return op.info().defs }

func (op Op) IsLL() bool { return op == LL_W || op == LL_D }
func (op Op) IsSC() bool { return op == SC_W || op == SC_D }

func LL(width int) Op {
	if width == 64 {
		return LL_D
	}

	return LL_W
}

func SC(width int) Op {
	if width == 64 {
		return SC_D
	}

	return SC_W
}
