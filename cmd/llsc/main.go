package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/llsc/compiler"
	"github.com/slowlang/llsc/compiler/back"
	"github.com/slowlang/llsc/compiler/format"
	"github.com/slowlang/llsc/compiler/interp"
	"github.com/slowlang/llsc/compiler/ir"
	"github.com/slowlang/llsc/compiler/live"
	"github.com/slowlang/llsc/compiler/parse"
)

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse listing and print it back with liveness",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	expandCmd := &cli.Command{
		Name:        "expand",
		Description: "lower atomic placeholders",
		Action:      expandAct,
		Args:        cli.Args{},
	}

	treeCmd := &cli.Command{
		Name:        "tree",
		Description: "print control flow tree of lowered functions",
		Action:      treeAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "lower and execute functions",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("func", "", "function to run, all if empty"),
			cli.NewFlag("reg", "", "initial registers: r4=0x1000,r5=1"),
			cli.NewFlag("mem", "", "initial memory words: 0x1000=5,0x1008=7"),
			cli.NewFlag("steps", 1<<16, "step limit"),
		},
	}

	app := &cli.Command{
		Name:        "llsc",
		Description: "llsc lowers atomic pseudo instructions into LL/SC loops",
		Commands: []*cli.Command{
			parseCmd,
			expandCmd,
			treeCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		pkg, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		for _, f := range pkg.Funcs {
			live.Compute(ctx, f)
		}

		fmt.Printf("%s", format.Package(nil, pkg, format.Comments))
	}

	return nil
}

func expandAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func treeAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		pkg, err := lower(ctx, a)
		if err != nil {
			return err
		}

		for _, f := range pkg.Funcs {
			fmt.Printf("%s", format.Tree(f))
		}
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	regs, err := parseAssignments(c.String("reg"))
	if err != nil {
		return errors.Wrap(err, "reg flag")
	}

	mem, err := parseAssignments(c.String("mem"))
	if err != nil {
		return errors.Wrap(err, "mem flag")
	}

	for _, a := range c.Args {
		pkg, err := lower(ctx, a)
		if err != nil {
			return err
		}

		for _, f := range pkg.Funcs {
			if name := c.String("func"); name != "" && name != f.Name {
				continue
			}

			m := interp.New()
			m.MaxSteps = c.Int("steps")

			for k, v := range regs {
				r, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(k, "$"), "r"), 10, 16)
				if err != nil {
					return errors.Wrap(err, "register %v", k)
				}

				m.SetReg(ir.Reg(r), v)
			}

			for k, v := range mem {
				addr, err := strconv.ParseUint(k, 0, 64)
				if err != nil {
					return errors.Wrap(err, "address %v", k)
				}

				m.Mem.Store(addr, 64, v)
			}

			err = m.Run(ctx, f)
			if err != nil {
				return errors.Wrap(err, "run %v", f.Name)
			}

			tlog.Printw("run", "func", f.Name, "steps", m.Stats.Steps, "ll", m.Stats.LL, "sc", m.Stats.SC, "sc_failed", m.Stats.SCFailed, "fences", m.Stats.FenceCount())

			printRegs(f.Name, m)
		}
	}

	return nil
}

func lower(ctx context.Context, name string) (*ir.Package, error) {
	pkg, err := parse.ParseFile(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	_, err = back.New().CompilePackage(ctx, nil, pkg)
	if err != nil {
		return nil, errors.Wrap(err, "compile %v", name)
	}

	return pkg, nil
}

// parseAssignments parses "k=v,k=v" lists.
func parseAssignments(s string) (map[string]uint64, error) {
	res := map[string]uint64{}

	if s == "" {
		return res, nil
	}

	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errors.New("bad assignment: %q", kv)
		}

		x, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "value of %v", k)
		}

		res[strings.TrimSpace(k)] = x
	}

	return res, nil
}

func printRegs(name string, m *interp.Machine) {
	regs := make([]ir.Reg, 0, len(m.Regs))

	for r := range m.Regs {
		regs = append(regs, r)
	}

	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })

	fmt.Printf("func %s\n", name)

	for _, r := range regs {
		fmt.Printf("\t%v\t%#x\n", r, m.Regs[r])
	}
}
