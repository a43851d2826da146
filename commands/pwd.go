package commands

import (
	"fmt"

	"github.com/vterm/vconsole/core/console"
)

// Pwd prints the working directory.
func Pwd(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the current working directory.",
	}

	return cmd.Run(ctx, "pwd", func() int {
		fmt.Fprintln(ctx.Stdout, ctx.Dir)
		return 0
	})
}

func init() {
	addBuiltin("pwd", "pwd", "Print the current working directory.", Pwd)
}
