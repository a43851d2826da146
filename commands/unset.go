package commands

import (
	"github.com/vterm/vconsole/core/console"
)

// Unset removes session variables.
func Unset(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "unset NAME...",
		Short: "Unset session environment variables.",
	}

	return cmd.Run(ctx, "unset", func() int {
		for _, arg := range cmd.Flags().Args() {
			ctx.Session.Unsetenv(arg)
		}
		return 0
	})
}

func init() {
	addBuiltin("unset", "unset NAME...", "Unset session environment variables.", Unset)
}
