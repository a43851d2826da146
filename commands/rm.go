package commands

import (
	"errors"

	"github.com/vterm/vconsole/core/console"
)

// Rm removes files and, recursively, directories.
func Rm(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "rm [-rf] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().Bool('r', "remove directories and their contents recursively")
	force := cmd.Flags().Bool('f', "ignore nonexistent files, never prompt")

	return cmd.Run(ctx, "rm", func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			if *force {
				return 0
			}
			ctx.Errorf("rm", "%v", errors.New("missing operand"))
			return 2
		}

		exitCode := 0
		for _, arg := range args {
			abs := ctx.AbsPath(arg)
			var err error
			if *recursive {
				err = ctx.FS.RemoveAll(ctx.Context, abs)
			} else {
				err = ctx.FS.Remove(ctx.Context, abs)
			}
			if err != nil && !*force {
				ctx.Errorf("rm", "%s: %v", arg, err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

func init() {
	addBuiltin("rm", "rm [-rf] FILE...", "Remove files or directories.", Rm)
}
