package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPwd(t *testing.T) {
	cases := goldenTestSuite{
		"root": {},
	}

	cases.Run(t, Pwd)
}

func TestPwd_after_chdir(t *testing.T) {
	ctx := context.Background()
	cmd := Command(t, Pwd)
	require.NoError(t, cmd.FS.MkdirAll(ctx, "/deep/down", 0755))
	require.NoError(t, cmd.Session.Chdir(ctx, "/deep/down"))

	assert.Equal(t, 0, cmd.Run())
	assert.Equal(t, "/deep/down\n", cmd.Stdout())
}
