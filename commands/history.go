package commands

import (
	"fmt"

	"github.com/vterm/vconsole/core/console"
)

// HistoryCmd prints or clears the session history.
func HistoryCmd(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "history [-c]",
		Short: "Show or clear command history.",
	}

	clear := cmd.Flags().Bool('c', "clear the history")

	return cmd.Run(ctx, "history", func() int {
		if *clear {
			ctx.Session.ClearHistory()
			return 0
		}

		for i, line := range ctx.Session.History().List() {
			fmt.Fprintf(ctx.Stdout, "%5d  %s\n", i+1, line)
		}
		return 0
	})
}

func init() {
	addBuiltin("history", "history [-c]", "Show or clear command history.", HistoryCmd)
}
