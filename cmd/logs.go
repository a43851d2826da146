package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vterm/vconsole/core/logger"
)

// logsCmd pretty-prints a recorded events log
var logsCmd = &cobra.Command{
	Use:   "logs FILE",
	Short: "Print a recorded events log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		out := cmd.OutOrStdout()
		return logger.ReadJSONLinesLog(fd, func(e *logger.Entry) {
			ts := time.UnixMicro(e.TimestampMicros).Format(time.RFC3339)
			switch {
			case e.Path != "":
				fmt.Fprintf(out, "%s %-18s %s\n", ts, e.Kind, e.Path)
			case e.ExitCode != 0:
				fmt.Fprintf(out, "%s %-18s %s (exit %d)\n", ts, e.Kind, e.Detail, e.ExitCode)
			default:
				fmt.Fprintf(out, "%s %-18s %s\n", ts, e.Kind, e.Detail)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
