package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text)
	}
	return out
}

func TestTokenizePipeline(t *testing.T) {
	tokens := Tokenize("ls -la | grep foo > out.txt")

	assert.Equal(t, []TokenKind{
		TokenWord, TokenWord, TokenPipe, TokenWord, TokenWord,
		TokenRedirectOut, TokenWord, TokenEOF,
	}, kinds(tokens))
	assert.Equal(t, []string{"ls", "-la", "|", "grep", "foo", ">", "out.txt", ""}, texts(tokens))
}

func TestTokenizeOperators(t *testing.T) {
	cases := []struct {
		input string
		want  []TokenKind
	}{
		{"a | b", []TokenKind{TokenWord, TokenPipe, TokenWord, TokenEOF}},
		{"a || b", []TokenKind{TokenWord, TokenOr, TokenWord, TokenEOF}},
		{"a & ", []TokenKind{TokenWord, TokenBackground, TokenEOF}},
		{"a && b", []TokenKind{TokenWord, TokenAnd, TokenWord, TokenEOF}},
		{"a ; b", []TokenKind{TokenWord, TokenSemicolon, TokenWord, TokenEOF}},
		{"a > f", []TokenKind{TokenWord, TokenRedirectOut, TokenWord, TokenEOF}},
		{"a >> f", []TokenKind{TokenWord, TokenRedirectAppend, TokenWord, TokenEOF}},
		{"a < f", []TokenKind{TokenWord, TokenRedirectIn, TokenWord, TokenEOF}},
		{"a 2> f", []TokenKind{TokenWord, TokenRedirectErr, TokenWord, TokenEOF}},
		{"a 2>> f", []TokenKind{TokenWord, TokenRedirectErrAppend, TokenWord, TokenEOF}},
		{"(a)", []TokenKind{TokenSubshellOpen, TokenWord, TokenSubshellClose, TokenEOF}},
		{"a\nb", []TokenKind{TokenWord, TokenNewline, TokenWord, TokenEOF}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, kinds(Tokenize(tc.input)))
		})
	}
}

func TestTokenizeQuotes(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`"hello world"`, "hello world"},
		{`'hello world'`, "hello world"},
		{`"it's"`, "it's"},
		{`'a "b" c'`, `a "b" c`},
		{`"esc \" quote"`, `esc " quote`},
		{`"unterminated`, "unterminated"},
		{`"keep \t literal"`, `keep \t literal`},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			tokens := Tokenize(tc.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, TokenString, tokens[0].Kind)
			assert.Equal(t, tc.want, tokens[0].Text)
		})
	}
}

func TestTokenizeVariables(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"$HOME", "$HOME"},
		{"${HOME}", "${HOME}"},
		{"${X:-default}", "${X:-default}"},
		{"$_under_1", "$_under_1"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			tokens := Tokenize(tc.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, TokenVariable, tokens[0].Kind)
			assert.Equal(t, tc.want, tokens[0].Text)
		})
	}
}

func TestTokenizeAssignments(t *testing.T) {
	cases := []struct {
		input    string
		wantKind TokenKind
		wantText string
	}{
		{"FOO=bar", TokenAssignment, "FOO=bar"},
		{"FOO=", TokenAssignment, "FOO="},
		{`FOO="a b"`, TokenAssignment, "FOO=a b"},
		{"_X1=yes", TokenAssignment, "_X1=yes"},
		// A non-identifier left side stays an ordinary word.
		{"--flag=value", TokenWord, "--flag=value"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			tokens := Tokenize(tc.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, tc.wantKind, tokens[0].Kind)
			assert.Equal(t, tc.wantText, tokens[0].Text)
		})
	}
}

func TestTokenizeComments(t *testing.T) {
	tokens := Tokenize("echo hi # trailing comment")
	assert.Equal(t, []TokenKind{TokenWord, TokenWord, TokenEOF}, kinds(tokens))
}

func TestTokenizePositions(t *testing.T) {
	tokens := Tokenize("ls -l\ncat")
	require.Len(t, tokens, 5)

	assert.Equal(t, 0, tokens[0].Offset)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Column)

	assert.Equal(t, 3, tokens[1].Offset)
	assert.Equal(t, 4, tokens[1].Column)

	// "cat" starts on line 2.
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, 1, tokens[3].Column)
}

func TestTokenizeEmpty(t *testing.T) {
	tokens := Tokenize("   \t  ")
	assert.Equal(t, []TokenKind{TokenEOF}, kinds(tokens))
}
