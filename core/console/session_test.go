package console

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vterm/vconsole/core/vfs"
)

// testRegistry provides just enough commands to drive the orchestrator
// without pulling in the real command set.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()

	commands := []*Command{
		{
			Name: "echo",
			Exec: func(c *Context) int {
				c.Printf("%s\n", strings.Join(c.Args, " "))
				return ExitSuccess
			},
		},
		{
			Name: "cat",
			Exec: func(c *Context) int {
				io.Copy(c.Stdout, c.Stdin)
				return ExitSuccess
			},
		},
		{
			Name: "pwd",
			Exec: func(c *Context) int {
				c.Printf("%s\n", c.Dir)
				return ExitSuccess
			},
		},
		{
			Name: "printenv",
			Exec: func(c *Context) int {
				if len(c.Args) != 1 {
					return ExitMisuse
				}
				value, ok := c.Env.Lookup(c.Args[0])
				if !ok {
					return ExitFailure
				}
				c.Printf("%s\n", value)
				return ExitSuccess
			},
		},
		{
			Name: "fail",
			Exec: func(c *Context) int {
				io.WriteString(c.Stderr, "boom\n")
				return ExitFailure
			},
		},
		{
			Name: "explode",
			Exec: func(c *Context) int {
				panic("kaboom")
			},
		},
	}
	for _, cmd := range commands {
		require.NoError(t, reg.Register(cmd))
	}
	return reg
}

func newTestSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()

	if cfg.FS == nil {
		cfg.FS = vfs.New(vfs.NewMemoryProvider(nil))
	}
	if cfg.Registry == nil {
		cfg.Registry = testRegistry(t)
	}

	s, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSessionValidation(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.New(vfs.NewMemoryProvider(nil))
	reg := testRegistry(t)

	_, err := NewSession(ctx, SessionConfig{Registry: reg})
	assert.Error(t, err)

	_, err = NewSession(ctx, SessionConfig{FS: fsys})
	assert.Error(t, err)

	_, err = NewSession(ctx, SessionConfig{FS: fsys, Registry: reg, State: NewMemoryStateStore()})
	assert.Error(t, err)
}

func TestNewSessionDirDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("home", func(t *testing.T) {
		fsys := vfs.New(vfs.NewMemoryProvider(nil))
		require.NoError(t, fsys.MkdirAll(ctx, "/home/guest", 0755))

		s := newTestSession(t, SessionConfig{
			FS:  fsys,
			Env: NewEnvironFrom(map[string]string{EnvHome: "/home/guest"}),
		})
		assert.Equal(t, "/home/guest", s.Dir())
		assert.Equal(t, "/home/guest", s.Env().Get(EnvPWD))
	})

	t.Run("missing directory falls back to root", func(t *testing.T) {
		s := newTestSession(t, SessionConfig{Dir: "/does/not/exist"})
		assert.Equal(t, "/", s.Dir())
	})
}

func TestExecuteEmptyInput(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "   \t ")
	assert.Equal(t, Result{ExitCode: ExitSuccess}, result)
	assert.Zero(t, s.History().Len())
}

func TestExecuteUnknownCommand(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "nope --flag")
	assert.Equal(t, ExitNotFound, result.ExitCode)
	assert.Equal(t, "nope: command not found\n", result.Stderr)
	// The line still lands in history.
	assert.Equal(t, []string{"nope --flag"}, s.History().List())
}

func TestExecuteSimpleCommand(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "echo hello world")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "hello world\n", result.Stdout)
	assert.Empty(t, result.Stderr)
}

func TestExecutePipeline(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "echo hi | cat")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "hi\n", result.Stdout)

	// The pipeline's exit code is the final segment's.
	result = s.Execute(context.Background(), "fail | cat")
	assert.Equal(t, ExitSuccess, result.ExitCode)
}

func TestExecuteParseError(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "echo hi |")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Contains(t, result.Stderr, "1:")
}

func TestExecutePanicContainment(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "explode")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Equal(t, "explode: kaboom\n", result.Stderr)

	// The session stays usable.
	result = s.Execute(context.Background(), "echo still here")
	assert.Equal(t, "still here\n", result.Stdout)
}

func TestExecuteOutputRedirect(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(ctx, "echo hi > /out.txt")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	// The rerouted stream leaves the result.
	assert.Empty(t, result.Stdout)

	data, err := s.FS().ReadFile(ctx, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))

	// ">>" appends.
	s.Execute(ctx, "echo again >> /out.txt")
	data, err = s.FS().ReadFile(ctx, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\nagain\n", string(data))
}

func TestExecuteErrorRedirect(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(ctx, "fail 2> /err.txt")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Empty(t, result.Stderr)

	data, err := s.FS().ReadFile(ctx, "/err.txt")
	require.NoError(t, err)
	assert.Equal(t, "boom\n", string(data))
}

func TestExecuteStderrDuplication(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "fail 2>&1")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Equal(t, "boom\n", result.Stdout)
	assert.Empty(t, result.Stderr)
}

func TestExecuteRedirectTargetExpansion(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.New(vfs.NewMemoryProvider(nil))
	require.NoError(t, fsys.MkdirAll(ctx, "/home/guest", 0755))

	s := newTestSession(t, SessionConfig{
		FS:  fsys,
		Env: NewEnvironFrom(map[string]string{EnvHome: "/home/guest"}),
	})
	s.Setenv("OUT", "/out.txt")

	// A variable target routes to the expanded path, not a file
	// literally named "$OUT".
	result := s.Execute(ctx, "echo hi > $OUT")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	data, err := s.FS().ReadFile(ctx, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))

	// Tilde targets resolve against HOME.
	result = s.Execute(ctx, "echo home > ~/tilde.txt")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	data, err = s.FS().ReadFile(ctx, "/home/guest/tilde.txt")
	require.NoError(t, err)
	assert.Equal(t, "home\n", string(data))

	// Input targets expand too.
	result = s.Execute(ctx, "cat < $OUT")
	assert.Equal(t, "hi\n", result.Stdout)
}

func TestExecuteInputRedirect(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})
	require.NoError(t, s.FS().WriteFile(ctx, "/in.txt", []byte("from file\n"), 0644))

	result := s.Execute(ctx, "cat < /in.txt")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "from file\n", result.Stdout)

	result = s.Execute(ctx, "cat < /missing.txt")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
}

func TestExecuteVariableExpansion(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})
	s.Setenv("NAME", "world")

	result := s.Execute(ctx, "echo hello $NAME")
	assert.Equal(t, "hello world\n", result.Stdout)

	result = s.Execute(ctx, "echo ${MISSING:-fallback}")
	assert.Equal(t, "fallback\n", result.Stdout)
}

func TestExecuteTildeExpansion(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.New(vfs.NewMemoryProvider(nil))
	require.NoError(t, fsys.MkdirAll(ctx, "/home/guest", 0755))

	s := newTestSession(t, SessionConfig{
		FS:  fsys,
		Env: NewEnvironFrom(map[string]string{EnvHome: "/home/guest"}),
	})

	result := s.Execute(ctx, "echo ~/notes.txt")
	assert.Equal(t, "/home/guest/notes.txt\n", result.Stdout)
}

func TestExecuteCommandSubstitution(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(ctx, `echo "$(echo inner)"`)
	assert.Equal(t, "inner\n", result.Stdout)

	result = s.Execute(ctx, "echo `pwd`")
	assert.Equal(t, "/\n", result.Stdout)

	// The substituted pipeline never reaches history.
	assert.NotContains(t, s.History().List(), "echo inner")
}

func TestExecuteGlobExpansion(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})
	require.NoError(t, s.FS().MkdirAll(ctx, "/data", 0755))
	require.NoError(t, s.FS().WriteFile(ctx, "/data/a.txt", nil, 0644))
	require.NoError(t, s.FS().WriteFile(ctx, "/data/b.txt", nil, 0644))

	result := s.Execute(ctx, "echo /data/*.txt")
	assert.Equal(t, "/data/a.txt /data/b.txt\n", result.Stdout)

	// No match keeps the literal word.
	result = s.Execute(ctx, "echo /data/*.go")
	assert.Equal(t, "/data/*.go\n", result.Stdout)
}

func TestExecuteAssignments(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	// A bare assignment mutates the session environment.
	result := s.Execute(ctx, "GREETING=hello")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "hello", s.Env().Get("GREETING"))

	// A pipeline-prefixed assignment is visible to the command only.
	result = s.Execute(ctx, "SCOPED=yes printenv SCOPED")
	assert.Equal(t, "yes\n", result.Stdout)
	_, ok := s.Env().Lookup("SCOPED")
	assert.False(t, ok)
}

func TestExecuteAssignmentValueExpansion(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})
	s.Setenv("BASE", "/srv")

	// Bare assignment values expand before they land in the session.
	result := s.Execute(ctx, "DEST=$BASE/data")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "/srv/data", s.Env().Get("DEST"))

	// Inline assignment values expand for the command's environment.
	result = s.Execute(ctx, "COPY=$BASE printenv COPY")
	assert.Equal(t, "/srv\n", result.Stdout)
}

func TestExecuteRejectsSecondStatement(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	result := s.Execute(context.Background(), "echo a\necho b")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Empty(t, result.Stdout)
	assert.Contains(t, result.Stderr, "2:")
}

func TestChdir(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})
	require.NoError(t, s.FS().MkdirAll(ctx, "/work", 0755))
	require.NoError(t, s.FS().WriteFile(ctx, "/file.txt", nil, 0644))

	require.NoError(t, s.Chdir(ctx, "/work"))
	assert.Equal(t, "/work", s.Dir())
	assert.Equal(t, "/work", s.Env().Get(EnvPWD))

	// Relative paths resolve against the current directory.
	require.NoError(t, s.Chdir(ctx, ".."))
	assert.Equal(t, "/", s.Dir())

	assert.ErrorIs(t, s.Chdir(ctx, "/file.txt"), vfs.ErrNotDirectory)
	assert.ErrorIs(t, s.Chdir(ctx, "/missing"), vfs.ErrNotFound)
	assert.Equal(t, "/", s.Dir())
}

func TestInterrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	s.Interrupt()
	result := s.Execute(ctx, "echo never runs")
	assert.Equal(t, Result{ExitCode: ExitInterrupted, Stdout: "^C\n"}, result)
	// The discarded input stays out of history.
	assert.Zero(t, s.History().Len())

	// The flag is consumed: the next input runs normally.
	result = s.Execute(ctx, "echo back")
	assert.Equal(t, "back\n", result.Stdout)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	result := s.Execute(ctx, "echo hi")
	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Equal(t, "session: closed\n", result.Stderr)
}

func TestSessionEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, SessionConfig{})

	var got []SessionEvent
	cancel := s.Subscribe(func(ev SessionEvent) { got = append(got, ev) })
	defer cancel()

	s.Execute(ctx, "echo hi")

	require.Len(t, got, 3)
	assert.Equal(t, SessionEvent{Kind: HistoryAppended, Detail: "echo hi"}, got[0])
	assert.Equal(t, SessionEvent{Kind: CommandStarted, Detail: "echo"}, got[1])
	assert.Equal(t, SessionEvent{Kind: CommandFinished, Detail: "echo"}, got[2])

	got = nil
	s.Execute(ctx, "nope")
	require.Len(t, got, 2)
	assert.Equal(t, CommandFailed, got[1].Kind)
	assert.Equal(t, ExitNotFound, got[1].ExitCode)
}

func TestSessionPersistence(t *testing.T) {
	ctx := context.Background()
	fsys := vfs.New(vfs.NewMemoryProvider(nil))
	require.NoError(t, fsys.MkdirAll(ctx, "/work", 0755))
	store := NewMemoryStateStore()

	cfg := SessionConfig{Name: "s1", FS: fsys, Registry: testRegistry(t), State: store}

	first, err := NewSession(ctx, cfg)
	require.NoError(t, err)
	first.Execute(ctx, "echo remembered")
	first.Setenv("TOKEN", "abc")
	require.NoError(t, first.Chdir(ctx, "/work"))
	require.NoError(t, first.Close())

	second, err := NewSession(ctx, cfg)
	require.NoError(t, err)
	defer second.Close()

	assert.Contains(t, second.History().List(), "echo remembered")
	assert.Equal(t, "abc", second.Env().Get("TOKEN"))
	assert.Equal(t, "/work", second.Dir())

	// A different namespace starts clean.
	other, err := NewSession(ctx, SessionConfig{
		Name: "s2", FS: fsys, Registry: testRegistry(t), State: store,
	})
	require.NoError(t, err)
	defer other.Close()
	assert.Zero(t, other.History().Len())
}
