package ir

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"
)

func (r Reg) String() string {
	return string(r.Append(nil))
}

func (r Reg) Append(b []byte) []byte {
	if r == Zero {
		return append(b, "$zero"...)
	}

	b = append(b, "$r"...)

	return strconv.AppendInt(b, int64(r), 10)
}

func (id BlockID) String() string {
	return string(id.Append(nil))
}

func (id BlockID) Append(b []byte) []byte {
	b = append(b, "block_"...)

	return strconv.AppendInt(b, int64(id), 10)
}

func (x Operand) String() string {
	return string(x.Append(nil))
}

func (x Operand) Append(b []byte) []byte {
	switch x.Kind {
	case KindReg:
		return x.Reg.Append(b)
	case KindImm:
		if x.Imm >= 0x100 {
			b = append(b, "0x"...)
			return strconv.AppendInt(b, x.Imm, 16)
		}

		return strconv.AppendInt(b, x.Imm, 10)
	case KindBlock:
		return x.Block.Append(b)
	default:
		return append(b, "<?>"...)
	}
}

func (x Instr) String() string {
	return string(x.Append(nil))
}

// Append renders the instruction as "mnemonic\targ, arg".
func (x Instr) Append(b []byte) []byte {
	b = append(b, x.Op.String()...)

	ord := x.Op.OrderingArg()

	for i, a := range x.Args {
		if i == 0 {
			b = append(b, '\t')
		} else {
			b = append(b, ", "...)
		}

		if i == ord && a.IsImm() && a.Imm >= 0 && a.Imm < int64(len(orderingNames)) {
			b = append(b, Ordering(a.Imm).String()...)
			continue
		}

		b = a.Append(b)
	}

	return b
}

func (r Reg) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, r.String())
}

func (id BlockID) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendInt(b, int(id))
}

func (x Instr) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, x.String())
}
