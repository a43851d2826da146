package commands

import (
	"fmt"

	"github.com/vterm/vconsole/core/console"
)

// Env prints the effective environment, one variable per line.
func Env(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "env",
		Short: "Print the environment.",
	}

	return cmd.Run(ctx, "env", func() int {
		for _, pair := range ctx.Env.List() {
			fmt.Fprintln(ctx.Stdout, pair)
		}
		return 0
	})
}

func init() {
	addBuiltin("env", "env", "Print the environment.", Env)
}
