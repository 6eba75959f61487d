package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// RMW is the read-modify-write operation of a placeholder.
	RMW int

	// variant is a closed set: binOp, minMax, cmpXchg.
	variant interface {
		layout() []role
	}

	binOp struct {
		op     RMW
		masked bool
		width  int
	}

	minMax struct {
		op RMW
	}

	cmpXchg struct {
		masked bool
		width  int
	}
)

const (
	Xchg RMW = iota
	Add
	Sub
	And
	Or
	Xor
	Nand
	UMax
	UMin
	Max
	Min
)

var rmwNames = [...]string{
	Xchg: "xchg",
	Add:  "add",
	Sub:  "sub",
	And:  "and",
	Or:   "or",
	Xor:  "xor",
	Nand: "nand",
	UMax: "umax",
	UMin: "umin",
	Max:  "max",
	Min:  "min",
}

var variants = map[ir.Op]variant{
	ir.PseudoAtomicSwap32:     binOp{op: Xchg, width: 32},
	ir.PseudoAtomicSwap64:     binOp{op: Xchg, width: 64},
	ir.PseudoAtomicLoadAdd32:  binOp{op: Add, width: 32},
	ir.PseudoAtomicLoadAdd64:  binOp{op: Add, width: 64},
	ir.PseudoAtomicLoadSub32:  binOp{op: Sub, width: 32},
	ir.PseudoAtomicLoadSub64:  binOp{op: Sub, width: 64},
	ir.PseudoAtomicLoadAnd32:  binOp{op: And, width: 32},
	ir.PseudoAtomicLoadAnd64:  binOp{op: And, width: 64},
	ir.PseudoAtomicLoadOr32:   binOp{op: Or, width: 32},
	ir.PseudoAtomicLoadOr64:   binOp{op: Or, width: 64},
	ir.PseudoAtomicLoadXor32:  binOp{op: Xor, width: 32},
	ir.PseudoAtomicLoadXor64:  binOp{op: Xor, width: 64},
	ir.PseudoAtomicLoadNand32: binOp{op: Nand, width: 32},
	ir.PseudoAtomicLoadNand64: binOp{op: Nand, width: 64},

	ir.PseudoMaskedAtomicSwap32:     binOp{op: Xchg, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadAdd32:  binOp{op: Add, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadSub32:  binOp{op: Sub, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadAnd32:  binOp{op: And, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadOr32:   binOp{op: Or, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadXor32:  binOp{op: Xor, masked: true, width: 32},
	ir.PseudoMaskedAtomicLoadNand32: binOp{op: Nand, masked: true, width: 32},

	ir.PseudoMaskedAtomicLoadUMax32: minMax{op: UMax},
	ir.PseudoMaskedAtomicLoadUMin32: minMax{op: UMin},
	ir.PseudoMaskedAtomicLoadMax32:  minMax{op: Max},
	ir.PseudoMaskedAtomicLoadMin32:  minMax{op: Min},

	ir.PseudoCmpXchg32:       cmpXchg{width: 32},
	ir.PseudoCmpXchg64:       cmpXchg{width: 64},
	ir.PseudoMaskedCmpXchg32: cmpXchg{masked: true, width: 32},
}

func (op RMW) String() string { return rmwNames[op] }

func (v binOp) layout() []role {
	if v.masked {
		return []role{roleDest, roleScratch, roleAddr, roleIncr, roleMask, roleOrdering}
	}

	return []role{roleDest, roleScratch, roleAddr, roleIncr, roleOrdering}
}

func (v minMax) layout() []role {
	l := []role{roleDest, roleScratch, roleScratch2, roleAddr, roleIncr, roleMask, roleOrdering}

	if v.signed() {
		l = append(l, roleShamt)
	}

	return l
}

func (v cmpXchg) layout() []role {
	if v.masked {
		return []role{roleDest, roleScratch, roleAddr, roleCmpVal, roleNewVal, roleMask, roleOrdering}
	}

	return []role{roleDest, roleScratch, roleAddr, roleCmpVal, roleNewVal, roleOrdering}
}

func (v minMax) signed() bool { return v.op == Max || v.op == Min }

// check rejects operation and width combinations nothing can expand.
func check(s site, v variant) error {
	switch v := v.(type) {
	case binOp:
		if v.width != 32 && v.width != 64 {
			return invariant(s, "unsupported width %d", v.width)
		}
		if v.masked && v.width != 32 {
			return invariant(s, "masked %v must be 32 bits wide, got %d", v.op, v.width)
		}
		if v.op > Nand {
			return invariant(s, "%v is not a binary operation", v.op)
		}
	case minMax:
		if v.op < UMax {
			return invariant(s, "%v is not a min/max operation", v.op)
		}
	case cmpXchg:
		if v.width != 32 && v.width != 64 {
			return invariant(s, "unsupported width %d", v.width)
		}
		if v.masked && v.width != 32 {
			return invariant(s, "masked cmpxchg must be 32 bits wide, got %d", v.width)
		}
	default:
		panic(v)
	}

	return nil
}
