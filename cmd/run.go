package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/spf13/cobra"

	"github.com/vterm/vconsole/commands"
	"github.com/vterm/vconsole/core/config"
	"github.com/vterm/vconsole/core/console"
	"github.com/vterm/vconsole/core/logger"
)

// runCmd starts an interactive session on the local terminal
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive console session.",
	Args:  cobra.ExactArgs(0),
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

		session, cleanup, err := buildSession(ctx, cfg, "default", true)
		if err != nil {
			return err
		}
		defer cleanup()

		rl, err := readline.NewEx(&readline.Config{
			Stdin:        readline.NewCancelableStdin(cmd.InOrStdin()),
			Stdout:       cmd.OutOrStdout(),
			Stderr:       cmd.ErrOrStderr(),
			AutoComplete: &registryCompleter{registry: session.Registry()},
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		for {
			rl.SetPrompt(renderPrompt(session))
			line, err := rl.Readline()

			switch {
			case err == io.EOF:
				return nil

			case err == readline.ErrInterrupt:
				session.Interrupt()
				continue

			case err != nil:
				return err
			}

			if strings.TrimSpace(line) == "exit" {
				return nil
			}

			result := session.Execute(ctx, line)
			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
		}
	},
}

// buildSession assembles the filesystem, registry and session a config
// describes. The returned cleanup closes the session and state store.
func buildSession(ctx context.Context, cfg *config.Configuration, name string, interactive bool) (*console.Session, func(), error) {
	vfsHandle, err := cfg.BuildFS(ctx)
	if err != nil {
		return nil, nil, err
	}

	registry := console.NewRegistry()
	if err := commands.RegisterAll(registry); err != nil {
		return nil, nil, err
	}

	var state console.StateStore
	var closers []io.Closer
	if cfg.StatePath != "" {
		store, err := console.OpenBoltStateStore(cfg.StatePath)
		if err != nil {
			return nil, nil, err
		}
		state = store
		closers = append(closers, store)
	}

	var record *logger.Logger
	if cfg.EventsLog != "" {
		fd, err := os.OpenFile(cfg.EventsLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, fd)
		record = logger.NewJSONLinesRecorder(fd)
		record.AttachFS(vfsHandle)
	}

	closeAll := func() {
		for _, closer := range closers {
			closer.Close()
		}
	}

	session, err := console.NewSession(ctx, console.SessionConfig{
		Name:        name,
		FS:          vfsHandle,
		Registry:    registry,
		Env:         console.NewEnvironFrom(cfg.SessionEnv()),
		HistorySize: cfg.HistorySize,
		State:       state,
		Interactive: interactive,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if record != nil {
		record.AttachSession(session)
	}

	cleanup := func() {
		session.Close()
		closeAll()
	}
	return session, cleanup, nil
}

// renderPrompt expands the PS1 template: \u user, \h hostname, \w
// working directory (with ~ for home), \$ prompt character.
func renderPrompt(session *console.Session) string {
	env := session.Env()
	prompt := env.Get(console.EnvPrompt)
	if prompt == "" {
		prompt = `\u@\h:\w\$ `
	}

	pwd := session.Dir()
	if home := env.Get(console.EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	prompt = strings.ReplaceAll(prompt, `\u`, env.Get(console.EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, env.Get(console.EnvHostname))
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)
	prompt = strings.ReplaceAll(prompt, `\$`, "$")
	return prompt
}

// registryCompleter completes the command word from the registry.
type registryCompleter struct {
	registry *console.Registry
}

func (c *registryCompleter) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}

	var out [][]rune
	for _, name := range c.registry.Completions(prefix) {
		out = append(out, []rune(name[len(prefix):]+" "))
	}
	return out, len(prefix)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
