package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "hypl"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [-d] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [-d] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the %[1]s programming language.

With no <path>, starts a line-at-a-time REPL. With a <path>, compiles and
runs the named source file.

Valid flag options are:
       -d                        Enable the execution-trace debug mode
                                 (stack snapshot plus disassembled
                                 instruction printed before every step).
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Environment overrides:
       HYPL_GC_STRESS            Force a garbage collection on every
                                 allocation.
       HYPL_TRACE                Equivalent to passing -d.
`, binName)
)

// Exit codes, matching the external CLI contract: success, usage error,
// compile error, runtime error, I/O failure.
const (
	ExitSuccess      = mainer.ExitCode(0)
	ExitUsageError   = mainer.ExitCode(64)
	ExitCompileError = mainer.ExitCode(65)
	ExitRuntimeError = mainer.ExitCode(70)
	ExitIOFailure    = mainer.ExitCode(74)
)

// Cmd is the command-line entry point: one optional source file path, the
// -d trace flag, and the usual -h/-v flags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Debug   bool `flag:"d"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one source file path may be given")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return ExitUsageError
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return ExitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return ExitSuccess
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return ExitUsageError
	}
	trace := c.Debug || cfg.Trace

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		return runREPL(ctx, stdio, trace, cfg.GCStress)
	}
	return runFile(ctx, stdio, c.args[0], trace, cfg.GCStress)
}
