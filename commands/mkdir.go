package commands

import (
	"errors"

	"github.com/vterm/vconsole/core/console"
)

// Mkdir creates directories.
func Mkdir(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [-p] DIR...",
		Short: "Create directories.",
	}

	parents := cmd.Flags().Bool('p', "make parent directories as needed, no error if existing")

	return cmd.Run(ctx, "mkdir", func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			ctx.Errorf("mkdir", "%v", errors.New("missing operand"))
			return 2
		}

		exitCode := 0
		for _, arg := range args {
			abs := ctx.AbsPath(arg)
			var err error
			if *parents {
				err = ctx.FS.MkdirAll(ctx.Context, abs, 0755)
			} else {
				err = ctx.FS.Mkdir(ctx.Context, abs, 0755)
			}
			if err != nil {
				ctx.Errorf("mkdir", "%s: %v", arg, err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

func init() {
	addBuiltin("mkdir", "mkdir [-p] DIR...", "Create directories.", Mkdir)
}
