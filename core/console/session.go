package console

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vterm/vconsole/core/events"
	"github.com/vterm/vconsole/core/shell"
	"github.com/vterm/vconsole/core/vfs"
)

// POSIX-flavored exit codes.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitMisuse      = 2
	ExitNotFound    = 127
	ExitInvalidArg  = 128
	ExitInterrupted = 130
)

// SessionEventKind classifies session lifecycle and state-change events.
type SessionEventKind int

const (
	CommandStarted SessionEventKind = iota
	CommandFinished
	CommandFailed
	CwdChanged
	EnvChanged
	HistoryAppended
	HistoryCleared
	SessionReady
	SessionDestroying
	SessionDestroyed
)

func (k SessionEventKind) String() string {
	switch k {
	case CommandStarted:
		return "command-started"
	case CommandFinished:
		return "command-finished"
	case CommandFailed:
		return "command-failed"
	case CwdChanged:
		return "cwd-changed"
	case EnvChanged:
		return "env-changed"
	case HistoryAppended:
		return "history-appended"
	case HistoryCleared:
		return "history-cleared"
	case SessionReady:
		return "session-ready"
	case SessionDestroying:
		return "session-destroying"
	case SessionDestroyed:
		return "session-destroyed"
	default:
		return "unknown"
	}
}

// SessionEvent is one session notification. Detail carries the command
// name, new directory, or variable name depending on the kind.
type SessionEvent struct {
	Kind     SessionEventKind
	Detail   string
	ExitCode int
}

// Result is the aggregate outcome of executing one input line.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// SessionConfig collects everything a session needs. FS and Registry
// are required; the rest has workable defaults.
type SessionConfig struct {
	// Name is the session's persistence namespace. Required only when
	// State is set.
	Name     string
	FS       *vfs.FS
	Registry *Registry
	// Env seeds the session environment; nil means empty.
	Env *Environ
	// Dir is the initial working directory, defaulting to HOME or "/".
	Dir string
	// HistorySize bounds the history ring buffer.
	HistorySize int
	// State, when set, persists history, cwd and env across sessions
	// sharing the same Name.
	State StateStore
	// Interactive marks the session as attached to a terminal, which
	// commands use to decide on coloring and prompts.
	Interactive bool
}

// Session is one interactive shell context: working directory,
// environment and history bound to an execution orchestrator. Execute
// calls are serialized; a session never processes two inputs at once.
type Session struct {
	// mu serializes Execute and Close. Handlers run under it, so state
	// they reach back into (dir, env, history) carries its own locking.
	mu sync.Mutex

	name     string
	fs       *vfs.FS
	registry *Registry
	env      *Environ
	history  *History
	state       StateStore
	interactive bool
	closed      bool

	dirMu sync.RWMutex
	dir   string

	interrupted atomic.Bool

	hub events.Hub[SessionEvent]
}

// NewSession creates a session, restoring any persisted state for
// cfg.Name, and announces it ready.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("session: config needs an FS")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("session: config needs a Registry")
	}
	if cfg.State != nil && cfg.Name == "" {
		return nil, fmt.Errorf("session: persistence needs a Name")
	}

	env := cfg.Env
	if env == nil {
		env = NewEnviron()
	}

	s := &Session{
		name:        cfg.Name,
		fs:          cfg.FS,
		registry:    cfg.Registry,
		env:         env,
		history:     NewHistory(cfg.HistorySize),
		state:       cfg.State,
		interactive: cfg.Interactive,
	}

	s.dir = cfg.Dir
	if s.dir == "" {
		s.dir = env.Get(EnvHome)
	}
	if s.dir == "" {
		s.dir = "/"
	}

	if err := s.restore(); err != nil {
		return nil, err
	}

	// The working directory must exist; fall back to the root, which a
	// mounted FS always has.
	if meta, err := s.fs.Stat(ctx, s.dir); err != nil || !meta.IsDir() {
		s.dir = "/"
	}
	s.env.Set(EnvPWD, s.dir)

	s.hub.Publish(SessionEvent{Kind: SessionReady, Detail: s.name})
	return s, nil
}

// Subscribe registers a handler for this session's events. The returned
// function cancels the subscription.
func (s *Session) Subscribe(fn func(SessionEvent)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// Name returns the session's namespace.
func (s *Session) Name() string { return s.name }

// Dir returns the current working directory.
func (s *Session) Dir() string {
	s.dirMu.RLock()
	defer s.dirMu.RUnlock()
	return s.dir
}

// Env returns the live session environment.
func (s *Session) Env() *Environ { return s.env }

// History returns the session's history buffer.
func (s *Session) History() *History { return s.history }

// FS returns the filesystem the session operates on.
func (s *Session) FS() *vfs.FS { return s.fs }

// Registry returns the command registry the session resolves against.
func (s *Session) Registry() *Registry { return s.registry }

// Chdir validates path against the filesystem and commits it as the new
// working directory.
func (s *Session) Chdir(ctx context.Context, path string) error {
	abs := s.absPath(path)

	meta, err := s.fs.Stat(ctx, abs)
	if err != nil {
		return err
	}
	if !meta.IsDir() {
		return fmt.Errorf("%s: %w", abs, vfs.ErrNotDirectory)
	}

	s.dirMu.Lock()
	s.dir = abs
	s.dirMu.Unlock()

	s.env.Set(EnvPWD, abs)
	s.hub.Publish(SessionEvent{Kind: CwdChanged, Detail: abs})
	return nil
}

// Setenv sets a session variable and notifies observers.
func (s *Session) Setenv(key, value string) {
	s.env.Set(key, value)
	s.hub.Publish(SessionEvent{Kind: EnvChanged, Detail: key})
}

// Unsetenv removes a session variable and notifies observers.
func (s *Session) Unsetenv(key string) {
	s.env.Unset(key)
	s.hub.Publish(SessionEvent{Kind: EnvChanged, Detail: key})
}

// ClearHistory drops all history entries and notifies observers.
func (s *Session) ClearHistory() {
	s.history.Clear()
	s.hub.Publish(SessionEvent{Kind: HistoryCleared})
}

// Interrupt flags the session as interrupted, Ctrl-C style. The next
// Execute call discards its input and reports an interruption marker
// instead; an in-flight handler is not aborted.
func (s *Session) Interrupt() {
	s.interrupted.Store(true)
}

// Execute runs one raw input line to completion and returns its
// aggregate result. Calls are serialized; overlapping callers queue on
// the session lock.
func (s *Session) Execute(ctx context.Context, raw string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{ExitCode: ExitFailure, Stderr: "session: closed\n"}
	}
	if s.interrupted.Swap(false) {
		return Result{ExitCode: ExitInterrupted, Stdout: "^C\n"}
	}

	if strings.TrimSpace(raw) == "" {
		return Result{ExitCode: ExitSuccess}
	}

	s.history.Append(raw)
	s.hub.Publish(SessionEvent{Kind: HistoryAppended, Detail: raw})

	return s.run(ctx, raw)
}

// run parses and executes input. The caller holds s.mu; command
// substitution re-enters here without touching history.
func (s *Session) run(ctx context.Context, raw string) Result {
	start := time.Now()

	parsed, err := shell.ParseString(raw)
	if err != nil {
		return Result{
			ExitCode: ExitFailure,
			Stderr:   err.Error() + "\n",
			Elapsed:  time.Since(start),
		}
	}

	// Bare assignments mutate the session environment itself. Values
	// expand like any word, so FOO=$HOME stores the home path.
	if len(parsed.Segments) == 0 {
		for name, value := range parsed.Env {
			s.env.Set(name, s.expandWord(ctx, value, s.env))
			s.hub.Publish(SessionEvent{Kind: EnvChanged, Detail: name})
		}
		return Result{ExitCode: ExitSuccess, Elapsed: time.Since(start)}
	}

	var result Result
	stdin := []byte(nil)
	for _, segment := range parsed.Segments {
		result = s.runSegment(ctx, parsed, segment, stdin)
		stdin = []byte(result.Stdout)
	}
	result.Elapsed = time.Since(start)
	return result
}

// runSegment executes one pipeline stage with stdin as its input bytes.
func (s *Session) runSegment(ctx context.Context, parsed *shell.ParsedCommand, segment *shell.Segment, stdin []byte) Result {
	env := s.env.Clone()
	for name, value := range parsed.Env {
		env.Set(name, s.expandWord(ctx, value, env))
	}
	for name, value := range segment.Env {
		env.Set(name, s.expandWord(ctx, value, env))
	}

	name := s.expandWord(ctx, segment.Name, env)
	args := s.expandArgs(ctx, segment.Args, env)

	// Redirection targets expand like any other word, so "> $OUT" and
	// "> ~/x" land where the user meant. Descriptor targets carry no
	// filename to expand.
	for i, redirect := range segment.Redirects {
		if redirect.TargetFD < 0 {
			segment.Redirects[i].Target = s.expandWord(ctx, redirect.Target, env)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := s.registry.Get(name)
	if cmd == nil {
		fmt.Fprintf(&stderr, "%s: command not found\n", name)
		s.hub.Publish(SessionEvent{Kind: CommandFailed, Detail: name, ExitCode: ExitNotFound})
		return Result{ExitCode: ExitNotFound, Stderr: stderr.String()}
	}

	input, errRes := s.applyInputRedirects(ctx, segment, stdin)
	if errRes != nil {
		return *errRes
	}

	cctx := &Context{
		Context:     ctx,
		Args:        args,
		Env:         env,
		Dir:         s.Dir(),
		FS:          s.fs,
		Stdin:       bytes.NewReader(input),
		Stdout:      &stdout,
		Stderr:      &stderr,
		Interactive: s.interactive,
		Session:     s,
	}
	if s.state != nil {
		cctx.State = &ScopedState{store: s.state, namespace: s.name}
	}

	s.hub.Publish(SessionEvent{Kind: CommandStarted, Detail: name})
	exitCode := s.invoke(cmd, cctx, name)
	if exitCode == ExitSuccess {
		s.hub.Publish(SessionEvent{Kind: CommandFinished, Detail: name, ExitCode: exitCode})
	} else {
		s.hub.Publish(SessionEvent{Kind: CommandFailed, Detail: name, ExitCode: exitCode})
	}

	result := Result{ExitCode: exitCode, Stdout: stdout.String(), Stderr: stderr.String()}
	if errRes := s.applyOutputRedirects(ctx, segment, &result); errRes != nil {
		return *errRes
	}
	return result
}

// invoke runs a handler with panic containment: nothing a command does
// escapes the session boundary as a fault.
func (s *Session) invoke(cmd *Command, cctx *Context, name string) (exitCode int) {
	defer func() {
		if recovered := recover(); recovered != nil {
			fmt.Fprintf(cctx.Stderr, "%s: %v\n", name, recovered)
			exitCode = ExitFailure
			if cmd.OnError != nil {
				cmd.OnError(cctx, recovered)
			}
		}
	}()

	if cmd.Before != nil {
		cmd.Before(cctx)
	}
	exitCode = cmd.Exec(cctx)
	if cmd.After != nil {
		cmd.After(cctx, exitCode)
	}
	return exitCode
}

// applyInputRedirects replaces the piped stdin bytes with the contents
// of the last "<" target, if any.
func (s *Session) applyInputRedirects(ctx context.Context, segment *shell.Segment, stdin []byte) ([]byte, *Result) {
	for _, redirect := range segment.Redirects {
		if redirect.Kind != shell.RedirectInput {
			continue
		}
		data, err := s.fs.ReadFile(ctx, s.absPath(redirect.Target))
		if err != nil {
			return nil, &Result{ExitCode: ExitFailure, Stderr: err.Error() + "\n"}
		}
		stdin = data
	}
	return stdin, nil
}

// applyOutputRedirects routes the captured stdout/stderr buffers into
// files per the segment's redirections, clearing the rerouted stream
// from the result. "2>&1" folds stderr into stdout instead.
func (s *Session) applyOutputRedirects(ctx context.Context, segment *shell.Segment, result *Result) *Result {
	for _, redirect := range segment.Redirects {
		if redirect.Kind == shell.RedirectInput {
			continue
		}

		if redirect.TargetFD >= 0 {
			// Only stderr-onto-stdout duplication is honored.
			if redirect.Kind == shell.RedirectError && redirect.TargetFD == 1 {
				result.Stdout += result.Stderr
				result.Stderr = ""
			}
			continue
		}

		var data string
		switch redirect.Kind {
		case shell.RedirectOutput, shell.RedirectOutputAppend:
			data, result.Stdout = result.Stdout, ""
		case shell.RedirectError, shell.RedirectErrorAppend:
			data, result.Stderr = result.Stderr, ""
		}

		target := s.absPath(redirect.Target)
		var err error
		switch redirect.Kind {
		case shell.RedirectOutputAppend, shell.RedirectErrorAppend:
			err = s.fs.AppendFile(ctx, target, []byte(data))
		default:
			err = s.fs.WriteFile(ctx, target, []byte(data), 0644)
		}
		if err != nil {
			return &Result{ExitCode: ExitFailure, Stderr: err.Error() + "\n"}
		}
	}
	return nil
}

// absPath resolves p against the session working directory.
func (s *Session) absPath(p string) string {
	if strings.HasPrefix(p, "/") {
		return vfs.Resolve(p)
	}
	return vfs.Resolve(vfs.Join(s.Dir(), p))
}

// Close persists session state and announces destruction. The session
// rejects further Execute calls.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.hub.Publish(SessionEvent{Kind: SessionDestroying, Detail: s.name})
	err := s.persist()
	s.hub.Publish(SessionEvent{Kind: SessionDestroyed, Detail: s.name})
	return err
}

// restore loads history, cwd and env from the state store.
func (s *Session) restore() error {
	if s.state == nil {
		return nil
	}

	var lines []string
	if ok, err := s.state.Get(s.name, stateKeyHistory, &lines); err != nil {
		return fmt.Errorf("session %s: restoring history: %w", s.name, err)
	} else if ok {
		s.history.Replace(lines)
	}

	var cwd string
	if ok, err := s.state.Get(s.name, stateKeyCwd, &cwd); err != nil {
		return fmt.Errorf("session %s: restoring cwd: %w", s.name, err)
	} else if ok && cwd != "" {
		s.dir = cwd
	}

	var env []string
	if ok, err := s.state.Get(s.name, stateKeyEnv, &env); err != nil {
		return fmt.Errorf("session %s: restoring env: %w", s.name, err)
	} else if ok {
		for _, pair := range env {
			split := strings.SplitN(pair, "=", 2)
			if len(split) == 2 {
				s.env.Set(split[0], split[1])
			}
		}
	}
	return nil
}

// persist writes history, cwd and env to the state store.
func (s *Session) persist() error {
	if s.state == nil {
		return nil
	}

	if err := s.state.Put(s.name, stateKeyHistory, s.history.List()); err != nil {
		return fmt.Errorf("session %s: persisting history: %w", s.name, err)
	}
	if err := s.state.Put(s.name, stateKeyCwd, s.Dir()); err != nil {
		return fmt.Errorf("session %s: persisting cwd: %w", s.name, err)
	}
	if err := s.state.Put(s.name, stateKeyEnv, s.env.List()); err != nil {
		return fmt.Errorf("session %s: persisting env: %w", s.name, err)
	}
	return nil
}
