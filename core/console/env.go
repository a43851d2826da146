// Package console binds the shell front end and the virtual filesystem
// into interactive sessions: a command registry, word expansion, history
// and an execution orchestrator producing structured results.
package console

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Well-known environment variable names.
const (
	EnvHome     = "HOME"
	EnvPWD      = "PWD"
	EnvPath     = "PATH"
	EnvPrompt   = "PS1"
	EnvHostname = "HOSTNAME"
	EnvUser     = "USER"
)

// Environ is a mutable map-backed environment, safe for concurrent
// reads.
type Environ struct {
	rw  sync.RWMutex
	env map[string]string
}

// NewEnviron creates an empty environment.
func NewEnviron() *Environ {
	return &Environ{}
}

// NewEnvironFrom creates an environment holding a copy of vars.
func NewEnvironFrom(vars map[string]string) *Environ {
	out := NewEnviron()
	for k, v := range vars {
		out.Set(k, v)
	}
	return out
}

// NewEnvironFromList creates an environment from "key=value" pairs.
func NewEnvironFromList(environ []string) *Environ {
	out := NewEnviron()
	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		out.Set(key, value)
	}
	return out
}

// Set sets the variable named by key.
func (m *Environ) Set(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
}

// Unset removes the variable named by key.
func (m *Environ) Unset(key string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	delete(m.env, key)
}

// Lookup retrieves the variable named by key, reporting whether it is
// present so an empty value and an unset value can be distinguished.
func (m *Environ) Lookup(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Get retrieves the variable named by key, "" if unset.
func (m *Environ) Get(key string) string {
	val, _ := m.Lookup(key)
	return val
}

// Clone returns an independent copy of the environment.
func (m *Environ) Clone() *Environ {
	m.rw.RLock()
	defer m.rw.RUnlock()

	out := NewEnviron()
	for k, v := range m.env {
		out.Set(k, v)
	}
	return out
}

// List returns the environment as sorted "key=value" pairs.
func (m *Environ) List() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	var env []string
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

// Clear deletes all variables.
func (m *Environ) Clear() {
	m.rw.Lock()
	defer m.rw.Unlock()
	m.env = make(map[string]string)
}
