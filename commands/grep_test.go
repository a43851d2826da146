package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrep_stdin(t *testing.T) {
	cmd := Command(t, Grep, "al")
	cmd.Stdin = "alpha\nbeta\n"

	assert.Equal(t, 0, cmd.Run())
	assert.Equal(t, "alpha\n", cmd.Stdout())
}

func TestGrep_no_match_exits_one(t *testing.T) {
	cmd := Command(t, Grep, "zzz")
	cmd.Stdin = "alpha\n"

	assert.Equal(t, 1, cmd.Run())
	assert.Empty(t, cmd.Stdout())
}

func TestGrep_flags(t *testing.T) {
	caseInsensitive := Command(t, Grep, "-i", "-n", "foo")
	caseInsensitive.Stdin = "bar\nFoo\n"
	assert.Equal(t, 0, caseInsensitive.Run())
	assert.Equal(t, "2:Foo\n", caseInsensitive.Stdout())

	inverted := Command(t, Grep, "-v", "alpha")
	inverted.Stdin = "alpha\nbeta\n"
	assert.Equal(t, 0, inverted.Run())
	assert.Equal(t, "beta\n", inverted.Stdout())
}

func TestGrep_files(t *testing.T) {
	ctx := context.Background()
	cmd := Command(t, Grep, "needle", "/a.txt", "/b.txt")
	require.NoError(t, cmd.FS.WriteFile(ctx, "/a.txt", []byte("hay\nneedle\n"), 0644))
	require.NoError(t, cmd.FS.WriteFile(ctx, "/b.txt", []byte("needle again\n"), 0644))

	assert.Equal(t, 0, cmd.Run())
	// Multiple files prefix matches with the file name.
	assert.Equal(t, "/a.txt:needle\n/b.txt:needle again\n", cmd.Stdout())
}

func TestGrep_errors(t *testing.T) {
	missingPattern := Command(t, Grep)
	assert.Equal(t, 2, missingPattern.Run())

	badPattern := Command(t, Grep, "(")
	assert.Equal(t, 2, badPattern.Run())
	assert.Contains(t, badPattern.Stderr(), "grep:")
}
