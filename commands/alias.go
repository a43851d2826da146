package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vterm/vconsole/core/console"
)

// Alias defines or lists command aliases.
func Alias(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "alias [NAME=TARGET]...",
		Short: "Define or list command aliases.",
	}

	return cmd.Run(ctx, "alias", func() int {
		args := cmd.Flags().Args()
		reg := ctx.Session.Registry()

		if len(args) == 0 {
			aliases := reg.Aliases()
			names := make([]string, 0, len(aliases))
			for name := range aliases {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(ctx.Stdout, "alias %s='%s'\n", name, aliases[name])
			}
			return 0
		}

		exitCode := 0
		for _, arg := range args {
			split := strings.SplitN(arg, "=", 2)
			if len(split) != 2 {
				ctx.Errorf("alias", "%s: %v", arg, errors.New("expected NAME=TARGET"))
				exitCode = 2
				continue
			}
			if err := reg.Alias(split[0], split[1]); err != nil {
				ctx.Errorf("alias", "%v", err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

// Unalias removes command aliases.
func Unalias(ctx *console.Context) int {
	cmd := &SimpleCommand{
		Use:   "unalias NAME...",
		Short: "Remove command aliases.",
	}

	return cmd.Run(ctx, "unalias", func() int {
		for _, arg := range cmd.Flags().Args() {
			ctx.Session.Registry().Unalias(arg)
		}
		return 0
	})
}

func init() {
	addBuiltin("alias", "alias [NAME=TARGET]...", "Define or list command aliases.", Alias)
	addBuiltin("unalias", "unalias NAME...", "Remove command aliases.", Unalias)
}
