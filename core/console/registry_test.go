package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopCommand(name string) *Command {
	return &Command{
		Name: name,
		Exec: func(*Context) int { return ExitSuccess },
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(noopCommand("ls")))
	assert.NotNil(t, reg.Get("ls"))
	assert.Nil(t, reg.Get("missing"))
}

func TestRegistryRejectsBadCommands(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&Command{Exec: func(*Context) int { return 0 }}))
	assert.Error(t, reg.Register(&Command{Name: "no-exec"}))

	require.NoError(t, reg.Register(noopCommand("dup")))
	assert.Error(t, reg.Register(noopCommand("dup")))
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(noopCommand("tmp")))

	reg.Unregister("tmp")
	assert.Nil(t, reg.Get("tmp"))
	// Unregistering a missing name is a no-op.
	reg.Unregister("tmp")
}

func TestRegistryAliases(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(noopCommand("ls")))

	require.NoError(t, reg.Alias("ll", "ls"))
	assert.Same(t, reg.Get("ls"), reg.Get("ll"))

	// Aliases cannot shadow commands, and targets must exist.
	assert.Error(t, reg.Alias("ls", "ls"))
	assert.Error(t, reg.Alias("x", "missing"))

	assert.Equal(t, map[string]string{"ll": "ls"}, reg.Aliases())

	reg.Unalias("ll")
	assert.Nil(t, reg.Get("ll"))
}

func TestRegistryListAndCompletions(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"cat", "cd", "ls"} {
		require.NoError(t, reg.Register(noopCommand(name)))
	}
	require.NoError(t, reg.Alias("cls", "ls"))

	assert.Equal(t, []string{"cat", "cd", "ls"}, reg.List())
	assert.Equal(t, []string{"cat", "cd", "cls"}, reg.Completions("c"))
	assert.Equal(t, []string{"ls"}, reg.Completions("ls"))
	assert.Empty(t, reg.Completions("zz"))
}
