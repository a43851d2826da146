package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vterm/vconsole/core/config"
)

// execCmd runs one line non-interactively and exits with its code
var execCmd = &cobra.Command{
	Use:   "exec LINE...",
	Short: "Execute a single command line and print its output.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig()
		if errors.Is(err, fs.ErrNotExist) {
			cfg = config.Default()
		} else if err != nil {
			return err
		}

		session, cleanup, err := buildSession(ctx, cfg, "default", false)
		if err != nil {
			return err
		}
		defer cleanup()

		result := session.Execute(ctx, strings.Join(args, " "))
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)

		if result.ExitCode != 0 {
			return fmt.Errorf("exit code %d", result.ExitCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
