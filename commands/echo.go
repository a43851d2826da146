package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vterm/vconsole/core/console"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-8][0-8]?[0-8]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// Echo implements a limited echo command.
func Echo(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "echo [-e] [-n] [ARG] ...",
		Short: "Display a line of text.",
	}

	opt := cmd.Flags()
	escaped := opt.Bool('e', "interpret backslash escapes")
	noNewline := opt.Bool('n', "do not output the trailing newline")

	return cmd.Run(ctx, "echo", func() int {
		for i, arg := range opt.Args() {
			if i > 0 {
				fmt.Fprint(ctx.Stdout, " ")
			}
			if *escaped {
				arg = unescape(arg)
			}
			fmt.Fprint(ctx.Stdout, arg)
		}
		if !*noNewline {
			fmt.Fprintln(ctx.Stdout)
		}
		return 0
	})
}

func init() {
	addBuiltin("echo", "echo [-e] [-n] [ARG] ...", "Display a line of text.", Echo)
}
