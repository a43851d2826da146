package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vterm/vconsole/core/vfs"
)

func TestRm(t *testing.T) {
	ctx := context.Background()
	cmd := Command(t, Rm, "/f.txt")
	require.NoError(t, cmd.FS.WriteFile(ctx, "/f.txt", []byte("x"), 0644))

	assert.Equal(t, 0, cmd.Run())
	_, err := cmd.FS.Stat(ctx, "/f.txt")
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestRm_recursive(t *testing.T) {
	ctx := context.Background()
	cmd := Command(t, Rm, "/d")
	require.NoError(t, cmd.FS.MkdirAll(ctx, "/d/sub", 0755))
	require.NoError(t, cmd.FS.WriteFile(ctx, "/d/f", nil, 0644))

	// A populated directory needs -r.
	assert.Equal(t, 1, cmd.Run())

	recursive := Command(t, Rm, "-r", "/d")
	recursive.FS = cmd.FS
	assert.Equal(t, 0, recursive.Run())
	_, err := cmd.FS.Stat(ctx, "/d")
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestRm_force(t *testing.T) {
	missing := Command(t, Rm, "/nope")
	assert.Equal(t, 1, missing.Run())
	assert.Contains(t, missing.Stderr(), "rm: /nope")

	forced := Command(t, Rm, "-f", "/nope")
	assert.Equal(t, 0, forced.Run())
	assert.Empty(t, forced.Stderr())
}
