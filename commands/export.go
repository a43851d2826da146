package commands

import (
	"fmt"
	"strings"

	"github.com/vterm/vconsole/core/console"
)

// Export sets session variables. Without arguments it lists the session
// environment in a re-usable form.
func Export(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "export [NAME=VALUE]...",
		Short: "Set session environment variables.",
	}

	return cmd.Run(ctx, "export", func() int {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			for _, pair := range ctx.Session.Env().List() {
				fmt.Fprintf(ctx.Stdout, "export %s\n", pair)
			}
			return 0
		}

		for _, arg := range args {
			split := strings.SplitN(arg, "=", 2)
			value := ""
			if len(split) == 2 {
				value = split[1]
			}
			ctx.Session.Setenv(split[0], value)
		}
		return 0
	})
}

func init() {
	addBuiltin("export", "export [NAME=VALUE]...", "Set session environment variables.", Export)
}
