package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vterm/vconsole/core/console"
)

// Cat implements the UNIX cat command. Without arguments it copies
// stdin to stdout, which makes it the pipeline's identity stage.
func Cat(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "cat [-n] [FILE]...",
		Short: "Concatenate files to standard output.",
	}

	numberLines := cmd.Flags().Bool('n', "number output lines")

	return cmd.Run(ctx, "cat", func() int {
		return eachFileOrStdin(ctx, "cat", cmd.Flags().Args(), func(name string, r io.Reader) error {
			if !*numberLines {
				_, err := io.Copy(ctx.Stdout, r)
				return err
			}

			scanner := bufio.NewScanner(r)
			lineNo := 1
			for scanner.Scan() {
				fmt.Fprintf(ctx.Stdout, "%6d\t%s\n", lineNo, scanner.Text())
				lineNo++
			}
			return scanner.Err()
		})
	})
}

func init() {
	addBuiltin("cat", "cat [-n] [FILE]...", "Concatenate files to standard output.", Cat)
}
