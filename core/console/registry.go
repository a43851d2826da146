package console

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CommandKind tags how a registered command is implemented.
type CommandKind int

const (
	// KindBuiltin is a command compiled into the host.
	KindBuiltin CommandKind = iota
	// KindExternal is a command supplied by the embedding application.
	KindExternal
	// KindAlias is a name resolved through the alias table.
	KindAlias
	// KindFunction is a command defined at runtime from shell input.
	KindFunction
)

func (k CommandKind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindExternal:
		return "external"
	case KindAlias:
		return "alias"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Command is one executable entry in a registry.
type Command struct {
	// Name is the word that invokes the command.
	Name string
	Kind CommandKind
	// Short holds a one line description.
	Short string
	// Use holds a one line usage string.
	Use string

	// Exec runs the command and returns its exit code.
	Exec func(ctx *Context) int

	// Optional lifecycle hooks, primarily for logging/telemetry.
	Before  func(ctx *Context)
	After   func(ctx *Context, exitCode int)
	OnError func(ctx *Context, recovered interface{})
}

// Registry maps command names to handlers with alias resolution on top.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds cmd, failing if its name is already taken.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil || cmd.Name == "" {
		return fmt.Errorf("register: command needs a name")
	}
	if cmd.Exec == nil {
		return fmt.Errorf("register %q: command needs an Exec", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("register %q: already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Unregister removes the command named name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get resolves name, following one level of alias indirection, and
// returns the command or nil.
func (r *Registry) Get(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	return r.commands[name]
}

// Alias makes aliasName invoke targetName. It fails when aliasName
// collides with a registered command or targetName is unknown.
func (r *Registry) Alias(aliasName, targetName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[aliasName]; exists {
		return fmt.Errorf("alias %q: collides with a command", aliasName)
	}
	if _, exists := r.commands[targetName]; !exists {
		return fmt.Errorf("alias %q: unknown command %q", aliasName, targetName)
	}
	r.aliases[aliasName] = targetName
	return nil
}

// Unalias removes an alias, if present.
func (r *Registry) Unalias(aliasName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.aliases, aliasName)
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// List returns all registered command names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Completions returns the sorted command and alias names starting with
// prefix.
func (r *Registry) Completions(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.commands {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	for name := range r.aliases {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
