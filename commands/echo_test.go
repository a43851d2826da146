package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEcho(t *testing.T) {
	cases := goldenTestSuite{
		"plain":      {Args: []string{"hello", "world"}},
		"no-newline": {Args: []string{"-n", "hi"}},
		"escapes":    {Args: []string{"-e", `a\tb`}},
	}

	cases.Run(t, Echo)
}

func TestEcho_no_args(t *testing.T) {
	cmd := Command(t, Echo)
	assert.Equal(t, 0, cmd.Run())
	assert.Equal(t, "\n", cmd.Stdout())
}

func TestUnescape(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`a\tb`, "a\tb"},
		{`a\nb`, "a\nb"},
		{`a\\b`, `a\b`},
		{`\x41`, "A"},
		{`\0101`, "A"},
		{`plain`, "plain"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, unescape(tc.input))
		})
	}
}
