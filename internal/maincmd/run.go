package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/smile/internal/vmconfig"
	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/machine"
	"github.com/mna/smile/lang/parser"
	"github.com/mna/smile/lang/scanner"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// Run implements the "run" command: compile and execute a source file,
// printing the resulting value or the uncaught exception (spec.md §6's
// embedding API, driven end to end the way a host would).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, args...)
}

// RunFiles parses, compiles and executes each file in turn, stopping at the
// first one that fails any stage.
func RunFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	cfg, err := vmconfig.Load()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	_, chunks, perr := parser.ParseFiles(ctx, parser.Mode(0), files...)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	for _, ch := range chunks {
		var tables compiler.CompiledTables
		if err := compiler.CompileToplevel(&tables, ch.Name, ch.Forms); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		m := cfg.NewMachine()
		res := m.Eval_Run(&tables)
		switch res.Kind {
		case machine.ResultException:
			printException(stdio, res.Exception)
			return fmt.Errorf("%s: uncaught exception", ch.Name)
		case machine.ResultValue:
			fmt.Fprintln(stdio.Stdout, res.Value.ToString())
		case machine.ResultBreak:
			fmt.Fprintf(stdio.Stdout, "%s: suspended at pc=%d\n", ch.Name, res.PC)
		}
	}
	return nil
}

// printException formats an uncaught exception object as "kind: message"
// (spec.md §7's "Uncaught exceptions at the outermost frame abort the
// process after formatting kind: message").
func printException(stdio mainer.Stdio, exc value.Object) {
	getter, ok := exc.(value.PropertyGetter)
	if !ok {
		fmt.Fprintf(stdio.Stderr, "%s\n", exc.ToString())
		return
	}
	kind, _ := getter.GetProperty(uint32(symbol.Intern("kind")), "kind")
	msg, _ := getter.GetProperty(uint32(symbol.Intern("message")), "message")
	if kind == nil {
		kind = value.NewString("error")
	}
	if msg == nil {
		msg = value.EmptyString
	}
	fmt.Fprintf(stdio.Stderr, "%s: %s\n", kind.ToString(), msg.ToString())
}
