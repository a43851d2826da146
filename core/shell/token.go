// Package shell turns raw command lines into a pipeline AST.
//
// The grammar follows the POSIX shell token recognition rules loosely:
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
// Tokenization and parsing are separate stages so that hosts can reuse
// the token stream for highlighting or completion.
package shell

import "fmt"

// TokenKind classifies a single token produced by the lexer.
type TokenKind int

const (
	// TokenEOF terminates every token stream.
	TokenEOF TokenKind = iota
	// TokenWord is an unquoted run of non-operator characters.
	TokenWord
	// TokenString is a quoted string with the quotes removed.
	TokenString
	// TokenPipe is "|".
	TokenPipe
	// TokenRedirectOut is ">".
	TokenRedirectOut
	// TokenRedirectAppend is ">>".
	TokenRedirectAppend
	// TokenRedirectIn is "<".
	TokenRedirectIn
	// TokenRedirectErr is "2>".
	TokenRedirectErr
	// TokenRedirectErrAppend is "2>>".
	TokenRedirectErrAppend
	// TokenBackground is "&".
	TokenBackground
	// TokenSemicolon is ";".
	TokenSemicolon
	// TokenAnd is "&&".
	TokenAnd
	// TokenOr is "||".
	TokenOr
	// TokenSubshellOpen is "(".
	TokenSubshellOpen
	// TokenSubshellClose is ")".
	TokenSubshellClose
	// TokenVariable is "$NAME", "${NAME}" or "${NAME:-default}", captured
	// verbatim. Expansion happens at execution time, not in the lexer.
	TokenVariable
	// TokenAssignment is "NAME=value" where NAME is a valid identifier.
	TokenAssignment
	// TokenNewline is a statement separator.
	TokenNewline
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:               "EOF",
	TokenWord:              "word",
	TokenString:            "string",
	TokenPipe:              "|",
	TokenRedirectOut:       ">",
	TokenRedirectAppend:    ">>",
	TokenRedirectIn:        "<",
	TokenRedirectErr:       "2>",
	TokenRedirectErrAppend: "2>>",
	TokenBackground:        "&",
	TokenSemicolon:         ";",
	TokenAnd:               "&&",
	TokenOr:                "||",
	TokenSubshellOpen:      "(",
	TokenSubshellClose:     ")",
	TokenVariable:          "variable",
	TokenAssignment:        "assignment",
	TokenNewline:           "newline",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one immutable, positional element of the input.
type Token struct {
	Kind TokenKind
	// Text is the token's value. Quotes are stripped for strings; operator
	// tokens keep their literal spelling.
	Text string
	// Offset is the byte offset of the token's first character.
	Offset int
	// Line and Column are 1-based positions of the token's first character.
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenWord, TokenString, TokenVariable, TokenAssignment:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}

// IsWordlike reports whether the token can fill an argument position.
func (t Token) IsWordlike() bool {
	return t.Kind == TokenWord || t.Kind == TokenString || t.Kind == TokenVariable
}
