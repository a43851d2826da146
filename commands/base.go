// Package commands holds the built-in command set for virtual console
// sessions: a small POSIX-flavored toolbox operating entirely against
// the virtual filesystem.
package commands

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"

	"github.com/vterm/vconsole/core/console"
)

// builtins collects every command registered via init().
var builtins = make(map[string]*console.Command)

func addBuiltin(name, use, short string, exec func(*console.Context) int) {
	builtins[name] = &console.Command{
		Name:  name,
		Kind:  console.KindBuiltin,
		Use:   use,
		Short: short,
		Exec:  exec,
	}
}

// RegisterAll installs every built-in command into reg.
func RegisterAll(reg *console.Registry) error {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Register(builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

// SimpleCommand handles flag parsing and help output so individual
// commands only implement their callback.
type SimpleCommand struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}
	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses flags from the context and, on success, calls the
// callback. The command name is argv[0] for getopt's purposes.
func (s *SimpleCommand) Run(ctx *console.Context, name string, callback func() int) int {
	opts := s.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	argv := append([]string{name}, ctx.Args...)
	if err := opts.Getopt(argv, nil); err != nil {
		fmt.Fprintf(ctx.Stderr, "%s: %s\n", name, err)
		s.PrintHelp(ctx.Stderr)
		return 2
	}

	if *showHelp {
		s.PrintHelp(ctx.Stdout)
		return 0
	}

	return callback()
}

// eachFileOrStdin invokes fn once per named file, or once with stdin
// when files is empty. Unreadable files report an error and continue.
func eachFileOrStdin(ctx *console.Context, name string, files []string, fn func(name string, r io.Reader) error) int {
	if len(files) == 0 {
		if err := fn("-", ctx.Stdin); err != nil {
			ctx.Errorf(name, "%v", err)
			return 1
		}
		return 0
	}

	exitCode := 0
	for _, file := range files {
		data, err := ctx.FS.ReadFile(ctx.Context, ctx.AbsPath(file))
		if err != nil {
			ctx.Errorf(name, "%s: %v", file, err)
			exitCode = 1
			continue
		}
		if err := fn(file, bytes.NewReader(data)); err != nil {
			ctx.Errorf(name, "%s: %v", file, err)
			exitCode = 1
		}
	}
	return exitCode
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

// ColorPrinter renders output with or without ANSI colors depending on
// a --color flag and whether the session is interactive.
type ColorPrinter struct {
	value       *string
	interactive bool
}

// Init registers the --color flag and captures the session's terminal
// state.
func (c *ColorPrinter) Init(flags *getopt.Set, ctx *console.Context) {
	c.interactive = ctx.Interactive
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch *c.value {
	case colorNever:
		return false
	case colorAlways:
		return true
	default:
		return c.interactive
	}
}

func (c *ColorPrinter) Sprintf(clr *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return clr.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
