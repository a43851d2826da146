package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryCmd(t *testing.T) {
	cases := goldenTestSuite{
		"listing": {
			Setup: func(t *testing.T, cmd *Cmd) {
				cmd.Session.History().Append("ls")
				cmd.Session.History().Append("pwd")
			},
		},
	}

	cases.Run(t, HistoryCmd)
}

func TestHistoryCmd_clear(t *testing.T) {
	cmd := Command(t, HistoryCmd, "-c")
	cmd.Session.History().Append("secret")

	assert.Equal(t, 0, cmd.Run())
	assert.Zero(t, cmd.Session.History().Len())
	assert.Empty(t, cmd.Stdout())
}
