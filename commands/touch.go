package commands

import (
	"errors"
	"time"

	"github.com/vterm/vconsole/core/console"
)

// Touch creates empty files or refreshes timestamps of existing ones.
func Touch(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "touch FILE...",
		Short: "Create empty files or update timestamps.",
	}

	return cmd.Run(ctx, "touch", func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			ctx.Errorf("touch", "%v", errors.New("missing operand"))
			return 2
		}

		exitCode := 0
		now := time.Now()
		for _, arg := range args {
			abs := ctx.AbsPath(arg)
			if _, err := ctx.FS.Stat(ctx.Context, abs); err == nil {
				if err := ctx.FS.Chtimes(ctx.Context, abs, now, now); err != nil {
					ctx.Errorf("touch", "%s: %v", arg, err)
					exitCode = 1
				}
				continue
			}
			if err := ctx.FS.WriteFile(ctx.Context, abs, nil, 0644); err != nil {
				ctx.Errorf("touch", "%s: %v", arg, err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

func init() {
	addBuiltin("touch", "touch FILE...", "Create empty files or update timestamps.", Touch)
}
