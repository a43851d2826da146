package console

import (
	"context"
	"fmt"
	"io"

	"github.com/vterm/vconsole/core/vfs"
)

// Context is what a command handler receives: post-expansion arguments,
// the effective environment, working directory, a filesystem handle,
// stdio streams and a session-scoped state handle.
type Context struct {
	// Context carries cancellation and deadlines into provider calls.
	Context context.Context

	// Args holds the expanded arguments, argv[0] excluded.
	Args []string
	// Env is the effective environment: the session environment overlaid
	// with pipeline-wide and segment-local assignments.
	Env *Environ
	// Dir is the working directory at execution time.
	Dir string

	FS *vfs.FS

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is set when the session is attached to a terminal.
	Interactive bool

	// State is a key/value handle scoped to the owning session's
	// namespace. Nil when the session has no state store.
	State *ScopedState

	// Session is the owning session. Commands that mutate session state
	// (cd, export, history -c) go through it so change events fire.
	Session *Session
}

// AbsPath resolves p against the context's working directory.
func (c *Context) AbsPath(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return vfs.Resolve(p)
	}
	return vfs.Resolve(vfs.Join(c.Dir, p))
}

// Printf writes formatted output to stdout.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout, format, args...)
}

// Errorf writes a one line "<command>: <reason>" message to stderr.
func (c *Context) Errorf(command, format string, args ...interface{}) {
	fmt.Fprintf(c.Stderr, "%s: %s\n", command, fmt.Sprintf(format, args...))
}

// ScopedState restricts a StateStore to one namespace.
type ScopedState struct {
	store     StateStore
	namespace string
}

// Get reads key into out, reporting presence.
func (s *ScopedState) Get(key string, out interface{}) (bool, error) {
	return s.store.Get(s.namespace, key, out)
}

// Put stores value under key.
func (s *ScopedState) Put(key string, value interface{}) error {
	return s.store.Put(s.namespace, key, value)
}

// Delete removes key.
func (s *ScopedState) Delete(key string) error {
	return s.store.Delete(s.namespace, key)
}
