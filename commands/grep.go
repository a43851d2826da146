package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/vterm/vconsole/core/console"
)

// Grep implements a POSIX-flavored grep over files or stdin.
func Grep(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "grep [-inv] PATTERN [FILE]...",
		Short: "Search files for text matching a pattern.",
	}

	invert := cmd.Flags().Bool('v', "select lines not matching the pattern")
	ignoreCase := cmd.Flags().Bool('i', "match without regard to case")
	showLineNumbers := cmd.Flags().Bool('n', "show line numbers")

	return cmd.Run(ctx, "grep", func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			ctx.Errorf("grep", "%v", errors.New("missing argument PATTERN"))
			return 2
		}

		pattern := args[0]
		if *ignoreCase {
			pattern = "(?i)" + pattern
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			ctx.Errorf("grep", "%v", err)
			return 2
		}

		files := args[1:]
		showFileName := len(files) > 1
		matched := false

		exitCode := eachFileOrStdin(ctx, "grep", files, func(name string, r io.Reader) error {
			scanner := bufio.NewScanner(r)
			lineNo := 1
			for scanner.Scan() {
				line := scanner.Bytes()
				lineMatches := regex.Match(line)

				if lineMatches != *invert {
					matched = true
					if showFileName {
						fmt.Fprintf(ctx.Stdout, "%s:", name)
					}
					if *showLineNumbers {
						fmt.Fprintf(ctx.Stdout, "%d:", lineNo)
					}
					fmt.Fprintf(ctx.Stdout, "%s\n", line)
				}
				lineNo++
			}
			return scanner.Err()
		})

		if exitCode != 0 {
			return exitCode
		}
		if !matched {
			return 1
		}
		return 0
	})
}

func init() {
	addBuiltin("grep", "grep [-inv] PATTERN [FILE]...", "Search files for text matching a pattern.", Grep)
}
