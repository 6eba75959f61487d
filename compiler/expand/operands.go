package expand

import (
	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// role is the meaning of a placeholder operand slot.
	role int

	// operands is a typed view over placeholder operands.
	operands struct {
		Dest     ir.Reg
		Scratch  ir.Reg
		Scratch2 ir.Reg
		Addr     ir.Reg
		Incr     ir.Reg
		CmpVal   ir.Reg
		NewVal   ir.Reg
		Mask     ir.Reg
		Shamt    ir.Reg

		Ordering ir.Ordering
	}
)

const (
	roleDest role = iota
	roleScratch
	roleScratch2
	roleAddr
	roleIncr
	roleCmpVal
	roleNewVal
	roleMask
	roleShamt
	roleOrdering
)

var roleNames = [...]string{
	roleDest:     "dest",
	roleScratch:  "scratch",
	roleScratch2: "scratch2",
	roleAddr:     "addr",
	roleIncr:     "incr",
	roleCmpVal:   "cmpval",
	roleNewVal:   "newval",
	roleMask:     "mask",
	roleShamt:    "shamt",
	roleOrdering: "ordering",
}

func (r role) String() string { return roleNames[r] }

// decode checks placeholder operands against the layout and returns the typed view.
func decode(s site, layout []role) (x operands, err error) {
	in := s.instr()

	if len(in.Args) != len(layout) {
		return x, invariant(s, "%d operands, want %d", len(in.Args), len(layout))
	}

	regs := make([]ir.Reg, 0, len(layout))
	roles := make([]role, 0, len(layout))

	for i, r := range layout {
		a := in.Args[i]

		if r == roleOrdering {
			if !a.IsImm() {
				return x, invariant(s, "operand %d (%v): immediate expected", i, r)
			}

			x.Ordering = ir.Ordering(a.Imm)

			if !x.Ordering.Valid() {
				return x, invariant(s, "operand %d: bad ordering: %d", i, a.Imm)
			}

			continue
		}

		if !a.IsReg() {
			return x, invariant(s, "operand %d (%v): register expected", i, r)
		}

		if a.Reg == ir.Zero {
			return x, invariant(s, "operand %d (%v): zero register", i, r)
		}

		for j, q := range regs {
			if q == a.Reg {
				return x, invariant(s, "%v and %v must be distinct: both %v", roles[j], r, q)
			}
		}

		regs = append(regs, a.Reg)
		roles = append(roles, r)

		*x.slot(r) = a.Reg
	}

	return x, nil
}

func (x *operands) slot(r role) *ir.Reg {
	switch r {
	case roleDest:
		return &x.Dest
	case roleScratch:
		return &x.Scratch
	case roleScratch2:
		return &x.Scratch2
	case roleAddr:
		return &x.Addr
	case roleIncr:
		return &x.Incr
	case roleCmpVal:
		return &x.CmpVal
	case roleNewVal:
		return &x.NewVal
	case roleMask:
		return &x.Mask
	case roleShamt:
		return &x.Shamt
	default:
		panic(r)
	}
}
