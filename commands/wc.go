package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vterm/vconsole/core/console"
)

// Wc counts lines, words and bytes.
func Wc(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "wc [-clw] [FILE]...",
		Short: "Count lines, words and bytes.",
	}

	countBytes := cmd.Flags().Bool('c', "print the byte counts")
	countLines := cmd.Flags().Bool('l', "print the newline counts")
	countWords := cmd.Flags().Bool('w', "print the word counts")

	return cmd.Run(ctx, "wc", func() int {
		// Default output is lines, words and bytes.
		all := !*countBytes && !*countLines && !*countWords

		files := cmd.Flags().Args()
		var totalLines, totalWords, totalBytes int64

		printCounts := func(lines, words, bytes int64, name string) {
			if all || *countLines {
				fmt.Fprintf(ctx.Stdout, "%8d", lines)
			}
			if all || *countWords {
				fmt.Fprintf(ctx.Stdout, "%8d", words)
			}
			if all || *countBytes {
				fmt.Fprintf(ctx.Stdout, "%8d", bytes)
			}
			if name != "-" {
				fmt.Fprintf(ctx.Stdout, " %s", name)
			}
			fmt.Fprintln(ctx.Stdout)
		}

		exitCode := eachFileOrStdin(ctx, "wc", files, func(name string, r io.Reader) error {
			var lines, words, bytes int64

			reader := bufio.NewReader(r)
			inWord := false
			for {
				ch, size, err := reader.ReadRune()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				bytes += int64(size)
				switch {
				case ch == '\n':
					lines++
					inWord = false
				case ch == ' ' || ch == '\t' || ch == '\r':
					inWord = false
				default:
					if !inWord {
						words++
					}
					inWord = true
				}
			}

			totalLines += lines
			totalWords += words
			totalBytes += bytes
			printCounts(lines, words, bytes, name)
			return nil
		})

		if len(files) > 1 {
			printCounts(totalLines, totalWords, totalBytes, "total")
		}
		return exitCode
	})
}

func init() {
	addBuiltin("wc", "wc [-clw] [FILE]...", "Count lines, words and bytes.", Wc)
}
