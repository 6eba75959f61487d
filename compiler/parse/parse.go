package parse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler/ir"
)

type (
	// State parses assembly listings of the form printed by format.Func.
	State struct {
		b []byte // all files concatenated

		files []file
	}

	file struct {
		base int
		size int
		name string
	}

	// SyntaxError points to the place in the source the parser failed at.
	SyntaxError struct {
		File string
		Line int
		Col  int

		Err error
	}

	line struct {
		pos, end int
	}

	funcParser struct {
		f *ir.Func

		labels map[string]ir.BlockID
	}
)

var (
	ErrUnexpectedEOL = errors.New("unexpected end of line")
	ErrNoFunc        = errors.New("code outside of function")
)

func ParseFile(ctx context.Context, name string) (*ir.Package, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	if filepath.Ext(name) == ".json" {
		return ParseJSON(ctx, name, data)
	}

	return Parse(ctx, name, data)
}

func Parse(ctx context.Context, name string, text []byte) (*ir.Package, error) {
	s := New()

	s.AddFile(name, text)

	return s.Parse(ctx)
}

func New() *State {
	return &State{}
}

func (s *State) AddFile(name string, text []byte) {
	f := file{
		name: name,
		base: len(s.b),
		size: len(text),
	}

	s.b = append(s.b, text...)

	if len(s.b) != 0 && s.b[len(s.b)-1] != '\n' {
		s.b = append(s.b, '\n')
		f.size++
	}

	s.files = append(s.files, f)
}

func (s *State) Parse(ctx context.Context) (pkg *ir.Package, err error) {
	tr := tlog.SpanFromContext(ctx)

	pkg = &ir.Package{}
	if len(s.files) != 0 {
		pkg.Path = s.files[0].name
	}

	var fn []line // lines of the current function

	flush := func() error {
		if fn == nil {
			return nil
		}

		f, err := s.parseFunc(fn)
		if err != nil {
			return err
		}

		if tr.If("parse") {
			tr.Printw("function parsed", "name", f.Name, "blocks", len(f.Blocks))
		}

		pkg.Funcs = append(pkg.Funcs, f)
		fn = nil

		return nil
	}

	for i := 0; i < len(s.b); {
		end := i + bytes.IndexByte(s.b[i:], '\n')

		l := s.strip(i, end)
		i = end + 1

		if l.pos == l.end {
			continue
		}

		if s.isFuncHeader(l) {
			if err = flush(); err != nil {
				return nil, err
			}
		} else if fn == nil {
			return nil, s.errorf(l.pos, ErrNoFunc, "")
		}

		fn = append(fn, l)
	}

	if err = flush(); err != nil {
		return nil, err
	}

	return pkg, nil
}

// strip cuts the comment off and trims spaces.
func (s *State) strip(pos, end int) line {
	if c := bytes.Index(s.b[pos:end], []byte("//")); c >= 0 {
		end = pos + c
	}

	if c := bytes.IndexByte(s.b[pos:end], '#'); c >= 0 {
		end = pos + c
	}

	pos = SpaceAll.Skip(s.b, pos)
	if pos > end {
		pos = end
	}

	end = SpaceAll.Trim(s.b, pos, end)

	return line{pos: pos, end: end}
}

func (s *State) isFuncHeader(l line) bool {
	w := s.b[l.pos:l.end]

	return bytes.HasPrefix(w, []byte("func")) && (len(w) == 4 || SpaceTab.Skip(w, 4) != 4)
}

func (s *State) parseFunc(lines []line) (_ *ir.Func, err error) {
	hdr := lines[0]

	i := SpaceTab.Skip(s.b, hdr.pos+4)
	if i == hdr.end {
		return nil, s.errorf(i, ErrUnexpectedEOL, "function name expected")
	}

	name := string(s.b[i:hdr.end])
	if !isIdent(name) {
		return nil, s.errorf(i, nil, "bad function name: %q", name)
	}

	p := &funcParser{
		f:      ir.NewFunc(name),
		labels: map[string]ir.BlockID{},
	}

	lines = lines[1:]

	// labels first so forward branches resolve

	for _, l := range lines {
		lab, ok := s.label(l)
		if !ok {
			continue
		}

		if _, dup := p.labels[lab]; dup {
			return nil, s.errorf(l.pos, nil, "label redefined: %v", lab)
		}

		p.labels[lab] = p.f.AppendBlock()
	}

	var cur *ir.Block

	for _, l := range lines {
		if lab, ok := s.label(l); ok {
			cur = p.f.Block(p.labels[lab])
			continue
		}

		if cur == nil {
			cur = p.implicitEntry()
		}

		x, err := s.parseInstr(p, l)
		if err != nil {
			return nil, err
		}

		cur.Code = append(cur.Code, x)
	}

	return p.finish()
}

func (s *State) label(l line) (string, bool) {
	if s.b[l.end-1] != ':' {
		return "", false
	}

	lab := string(s.b[l.pos : l.end-1])

	return lab, isIdent(lab)
}

func (s *State) parseInstr(p *funcParser, l line) (x ir.Instr, err error) {
	i := l.pos
	for i < l.end && !isSpace(s.b[i]) {
		i++
	}

	mnemonic := string(s.b[l.pos:i])

	var args []string
	var poss []int

	for i < l.end {
		i = SpaceTab.Skip(s.b, i)

		st := i
		for i < l.end && s.b[i] != ',' {
			i++
		}

		end := SpaceTab.Trim(s.b, st, i)
		if st == end {
			return x, s.errorf(st, nil, "operand expected")
		}

		args = append(args, string(s.b[st:end]))
		poss = append(poss, st)

		if i < l.end {
			i++ // ,

			if SpaceTab.Skip(s.b, i) == l.end {
				return x, s.errorf(i, ErrUnexpectedEOL, "operand expected")
			}
		}
	}

	x, argi, err := p.instr(mnemonic, args)
	if err != nil {
		pos := l.pos
		if argi >= 0 {
			pos = poss[argi]
		}

		return x, s.errorf(pos, err, "")
	}

	return x, nil
}

func (p *funcParser) implicitEntry() *ir.Block {
	id := p.f.NewBlock()

	p.f.Layout = append([]ir.BlockID{id}, p.f.Layout...)

	return p.f.Block(id)
}

// instr builds an instruction. On error it returns the index of the bad operand or -1.
func (p *funcParser) instr(mnemonic string, args []string) (x ir.Instr, argi int, err error) {
	op, ok := ir.LookupOp(mnemonic)
	if !ok {
		return x, -1, errors.New("unknown mnemonic: %q", mnemonic)
	}

	x.Op = op

	ord := op.OrderingArg()

	for i, a := range args {
		arg, err := p.operand(a, i == ord)
		if err != nil {
			return x, i, err
		}

		x.Args = append(x.Args, arg)
	}

	return x, -1, nil
}

func (p *funcParser) operand(s string, ordering bool) (ir.Operand, error) {
	switch {
	case s == "":
		return ir.Operand{}, errors.Wrap(ErrUnexpectedEOL, "operand expected")
	case s == "$zero":
		return ir.R(ir.Zero), nil
	case s[0] == '$':
		if len(s) < 3 || s[1] != 'r' {
			return ir.Operand{}, errors.New("bad register: %q", s)
		}

		r, err := strconv.ParseUint(s[2:], 10, 16)
		if err != nil {
			return ir.Operand{}, errors.New("bad register: %q", s)
		}

		return ir.R(ir.Reg(r)), nil
	case s[0] == '-' || s[0] >= '0' && s[0] <= '9':
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return ir.Operand{}, errors.Wrap(err, "immediate")
		}

		return ir.Imm(v), nil
	}

	if o, ok := ir.ParseOrdering(s); ok {
		if !ordering {
			return ir.Operand{}, errors.New("unexpected ordering: %v", s)
		}

		return ir.Imm(int64(o)), nil
	}

	if id, ok := p.labels[s]; ok {
		return ir.Label(id), nil
	}

	return ir.Operand{}, errors.New("undefined label: %v", s)
}

func (p *funcParser) finish() (*ir.Func, error) {
	if len(p.f.Layout) == 0 {
		p.f.AppendBlock()
	}

	p.f.InferSuccs()

	err := p.f.Verify()
	if err != nil {
		return nil, errors.Wrap(err, "func %v", p.f.Name)
	}

	return p.f, nil
}

func (s *State) errorf(pos int, err error, format string, args ...interface{}) error {
	e := &SyntaxError{Err: err}

	switch {
	case err == nil:
		e.Err = errors.New(format, args...)
	case format != "":
		e.Err = errors.Wrap(err, format, args...)
	}

	for _, f := range s.files {
		if pos < f.base || pos >= f.base+f.size {
			continue
		}

		e.File = f.name
		e.Line = 1 + bytes.Count(s.b[f.base:pos], []byte{'\n'})
		e.Col = pos - f.base - bytes.LastIndexByte(s.b[f.base:pos], '\n')

		break
	}

	return e
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.File, e.Line, e.Col, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
		case c >= '0' && c <= '9' && i != 0:
		default:
			return false
		}
	}

	return true
}
