package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vterm/vconsole/core/config"
)

// initCmd writes a starter configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml to the config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		target := filepath.Join(cfgPath, config.ConfigurationName)
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s already exists", target)
		}

		if err := os.MkdirAll(cfgPath, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(target, config.DefaultYAML(), 0644); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
