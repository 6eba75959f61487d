package interp

import (
	"context"
	"encoding/binary"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// Machine executes native instructions of a single hardware thread.
	Machine struct {
		Regs map[ir.Reg]uint64
		Mem  Memory

		// Interfere is called before every store-conditional.
		// It may change memory as another thread would.
		// Returning true breaks the reservation and the store fails.
		Interfere func(m *Machine, addr uint64) bool

		MaxSteps int

		Stats Stats

		resv     bool
		resvAddr uint64
	}

	// Memory is byte addressed, little endian, zero initialized.
	Memory map[uint64]byte

	Stats struct {
		Steps int

		LL       int
		SC       int
		SCFailed int

		Fences map[int64]int // hint -> count
		Trace  []ir.BlockID  // blocks entered, in order
	}
)

var (
	ErrPlaceholder = errors.New("placeholder executed")
	ErrSteps       = errors.New("step limit exceeded")
)

func New() *Machine {
	return &Machine{
		Regs:     map[ir.Reg]uint64{},
		Mem:      Memory{},
		MaxSteps: 1 << 16,
	}
}

func (m *Machine) Reg(r ir.Reg) uint64 {
	if r == ir.Zero {
		return 0
	}

	return m.Regs[r]
}

func (m *Machine) SetReg(r ir.Reg, v uint64) {
	if r == ir.Zero {
		return
	}

	m.Regs[r] = v
}

func (m Memory) Load(addr uint64, width int) uint64 {
	var buf [8]byte

	n := width / 8

	for i := 0; i < n; i++ {
		buf[i] = m[addr+uint64(i)]
	}

	return binary.LittleEndian.Uint64(buf[:])
}

func (m Memory) Store(addr uint64, width int, v uint64) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], v)

	n := width / 8

	for i := 0; i < n; i++ {
		m[addr+uint64(i)] = buf[i]
	}
}

// Run executes f from its entry until ret or falling off the last block.
func (m *Machine) Run(ctx context.Context, f *ir.Func) (err error) {
	tr := tlog.SpanFromContext(ctx)

	if m.Stats.Fences == nil {
		m.Stats.Fences = map[int64]int{}
	}

	id := f.Entry()

blocks:
	for id != ir.NoBlock {
		b := f.Block(id)
		m.Stats.Trace = append(m.Stats.Trace, id)

		for i, x := range b.Code {
			if m.MaxSteps != 0 && m.Stats.Steps >= m.MaxSteps {
				return errors.Wrap(ErrSteps, "%v: instr %d", id, i)
			}

			m.Stats.Steps++

			if tr.If("interp") {
				tr.Printw("exec", "block", id, "i", i, "instr", x)
			}

			next, jump, err := m.exec(x)
			if err != nil {
				return errors.Wrap(err, "%v: instr %d: %v", id, i, x)
			}

			if x.Op == ir.RET {
				return nil
			}

			if jump {
				id = next
				continue blocks
			}
		}

		id = f.Next(id)
	}

	return nil
}

func (m *Machine) exec(x ir.Instr) (next ir.BlockID, jump bool, err error) {
	a := x.Args

	reg := func(i int) uint64 { return m.Reg(a[i].Reg) }
	set := func(v uint64) { m.SetReg(a[0].Reg, v) }

	switch x.Op {
	case ir.LL_W, ir.LL_D:
		addr := reg(1) + uint64(a[2].Imm)
		v := m.Mem.Load(addr, x.Op.Width())

		if x.Op == ir.LL_W {
			v = sext32(v)
		}

		set(v)

		m.resv = true
		m.resvAddr = addr
		m.Stats.LL++
	case ir.SC_W, ir.SC_D:
		addr := reg(1) + uint64(a[2].Imm)
		ok := m.resv && m.resvAddr == addr

		if ok && m.Interfere != nil && m.Interfere(m, addr) {
			ok = false
		}

		m.resv = false
		m.Stats.SC++

		if ok {
			m.Mem.Store(addr, x.Op.Width(), reg(0))
			set(1)
		} else {
			m.Stats.SCFailed++
			set(0)
		}
	case ir.ADD_W:
		set(sext32(reg(1) + reg(2)))
	case ir.ADD_D:
		set(reg(1) + reg(2))
	case ir.SUB_W:
		set(sext32(reg(1) - reg(2)))
	case ir.SUB_D:
		set(reg(1) - reg(2))
	case ir.ADDI_W:
		set(sext32(reg(1) + uint64(a[2].Imm)))
	case ir.AND:
		set(reg(1) & reg(2))
	case ir.OR:
		set(reg(1) | reg(2))
	case ir.XOR:
		set(reg(1) ^ reg(2))
	case ir.NOR:
		set(^(reg(1) | reg(2)))
	case ir.ANDN:
		set(reg(1) &^ reg(2))
	case ir.SLL_W:
		set(sext32(reg(1) << (reg(2) & 31)))
	case ir.SRA_W:
		set(uint64(int64(int32(uint32(reg(1))) >> (reg(2) & 31))))
	case ir.DBAR:
		m.Stats.Fences[a[0].Imm]++
	case ir.B:
		return a[0].Block, true, nil
	case ir.BEQZ:
		return a[1].Block, reg(0) == 0, nil
	case ir.BNE:
		return a[2].Block, reg(0) != reg(1), nil
	case ir.BGE:
		return a[2].Block, int64(reg(0)) >= int64(reg(1)), nil
	case ir.BGEU:
		return a[2].Block, reg(0) >= reg(1), nil
	case ir.RET:
	default:
		if x.Op.IsPseudo() {
			return ir.NoBlock, false, ErrPlaceholder
		}

		return ir.NoBlock, false, errors.New("unsupported op: %v", x.Op)
	}

	return ir.NoBlock, false, nil
}

// FenceCount is the number of executed fences of any hint.
func (s Stats) FenceCount() (n int) {
	for _, c := range s.Fences {
		n += c
	}

	return n
}

func sext32(v uint64) uint64 {
	return uint64(int64(int32(uint32(v))))
}
