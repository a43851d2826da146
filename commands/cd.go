package commands

import (
	"github.com/vterm/vconsole/core/console"
)

// Cd changes the session's working directory. Without an argument it
// moves to $HOME.
func Cd(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "cd [DIR]",
		Short: "Change the working directory.",
	}

	return cmd.Run(ctx, "cd", func() int {
		target := ctx.Env.Get(console.EnvHome)
		if args := cmd.Flags().Args(); len(args) > 0 {
			target = args[0]
		}
		if target == "" {
			target = "/"
		}

		if err := ctx.Session.Chdir(ctx.Context, target); err != nil {
			ctx.Errorf("cd", "%s: %v", target, err)
			return 1
		}
		return 0
	})
}

func init() {
	addBuiltin("cd", "cd [DIR]", "Change the working directory.", Cd)
}
