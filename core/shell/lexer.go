package shell

import "strings"

// Tokenize splits input into a flat token stream terminated by an EOF
// token. It never fails: malformed input (an unterminated quote, a stray
// operator) degrades to best-effort tokens and the parser is responsible
// for surfacing structured errors.
func Tokenize(input string) []Token {
	lx := &lexer{input: input, line: 1, column: 1}
	return lx.run()
}

type lexer struct {
	input  string
	pos    int
	line   int
	column int

	tokens []Token
}

func (lx *lexer) run() []Token {
	for {
		lx.skipBlank()

		if lx.eof() {
			lx.emit(Token{Kind: TokenEOF, Offset: lx.pos, Line: lx.line, Column: lx.column})
			return lx.tokens
		}

		start := lx.mark()
		switch ch := lx.peek(); {
		case ch == '#':
			lx.skipComment()

		case ch == '\n':
			lx.advance()
			lx.emitAt(start, TokenNewline, "\n")

		case ch == '|':
			lx.advance()
			if lx.peek() == '|' {
				lx.advance()
				lx.emitAt(start, TokenOr, "||")
			} else {
				lx.emitAt(start, TokenPipe, "|")
			}

		case ch == '&':
			lx.advance()
			if lx.peek() == '&' {
				lx.advance()
				lx.emitAt(start, TokenAnd, "&&")
			} else {
				lx.emitAt(start, TokenBackground, "&")
			}

		case ch == ';':
			lx.advance()
			lx.emitAt(start, TokenSemicolon, ";")

		case ch == '(':
			lx.advance()
			lx.emitAt(start, TokenSubshellOpen, "(")

		case ch == ')':
			lx.advance()
			lx.emitAt(start, TokenSubshellClose, ")")

		case ch == '<':
			lx.advance()
			lx.emitAt(start, TokenRedirectIn, "<")

		case ch == '>':
			lx.advance()
			if lx.peek() == '>' {
				lx.advance()
				lx.emitAt(start, TokenRedirectAppend, ">>")
			} else {
				lx.emitAt(start, TokenRedirectOut, ">")
			}

		case ch == '2' && lx.peekAt(1) == '>':
			lx.advance() // 2
			lx.advance() // >
			if lx.peek() == '>' {
				lx.advance()
				lx.emitAt(start, TokenRedirectErrAppend, "2>>")
			} else {
				lx.emitAt(start, TokenRedirectErr, "2>")
			}

		case ch == '"' || ch == '\'':
			text := lx.scanQuoted(ch)
			lx.emitAt(start, TokenString, text)

		case ch == '$':
			lx.emitAt(start, TokenVariable, lx.scanVariable())

		default:
			word := lx.scanWord()
			switch {
			case lx.peek() == '=' && isIdentifier(word):
				lx.advance() // =
				value := lx.scanAssignmentValue()
				lx.emitAt(start, TokenAssignment, word+"="+value)
			case lx.peek() == '=':
				// Not an identifier, so "=" is just another word character
				// ("--flag=value" stays a single word).
				lx.advance()
				lx.emitAt(start, TokenWord, word+"="+lx.scanAssignmentValue())
			default:
				lx.emitAt(start, TokenWord, word)
			}
		}
	}
}

type position struct {
	offset, line, column int
}

func (lx *lexer) mark() position {
	return position{lx.pos, lx.line, lx.column}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.input)
}

func (lx *lexer) peek() byte {
	return lx.peekAt(0)
}

func (lx *lexer) peekAt(n int) byte {
	if lx.pos+n >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+n]
}

func (lx *lexer) advance() byte {
	ch := lx.input[lx.pos]
	lx.pos++
	if ch == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return ch
}

func (lx *lexer) emit(tok Token) {
	lx.tokens = append(lx.tokens, tok)
}

func (lx *lexer) emitAt(start position, kind TokenKind, text string) {
	lx.emit(Token{
		Kind:   kind,
		Text:   text,
		Offset: start.offset,
		Line:   start.line,
		Column: start.column,
	})
}

// skipBlank consumes spaces, tabs and carriage returns. Newlines are
// statement separators and stay in the stream.
func (lx *lexer) skipBlank() {
	for !lx.eof() {
		switch lx.peek() {
		case ' ', '\t', '\r':
			lx.advance()
		default:
			return
		}
	}
}

func (lx *lexer) skipComment() {
	for !lx.eof() && lx.peek() != '\n' {
		lx.advance()
	}
}

// scanQuoted consumes a quoted string, returning its contents with the
// surrounding quotes removed. A backslash escapes the matching quote
// character only; any other backslash is kept literally. An unterminated
// string yields everything up to EOF.
func (lx *lexer) scanQuoted(quote byte) string {
	lx.advance() // opening quote

	var sb strings.Builder
	for !lx.eof() {
		ch := lx.peek()
		switch {
		case ch == '\\' && lx.peekAt(1) == quote:
			lx.advance()
			sb.WriteByte(lx.advance())
		case ch == quote:
			lx.advance()
			return sb.String()
		default:
			sb.WriteByte(lx.advance())
		}
	}
	return sb.String()
}

// scanVariable consumes $NAME, ${NAME} or ${NAME:-default} verbatim,
// including the dollar sign. A lone dollar degrades to the literal "$".
func (lx *lexer) scanVariable() string {
	var sb strings.Builder
	sb.WriteByte(lx.advance()) // $

	if lx.peek() == '{' {
		for !lx.eof() {
			ch := lx.advance()
			sb.WriteByte(ch)
			if ch == '}' {
				break
			}
		}
		return sb.String()
	}

	for !lx.eof() && isIdentifierByte(lx.peek(), sb.Len() > 1) {
		sb.WriteByte(lx.advance())
	}
	return sb.String()
}

// scanWord consumes characters until whitespace, an operator, a quote, a
// dollar sign or an equals sign.
func (lx *lexer) scanWord() string {
	var sb strings.Builder
	for !lx.eof() {
		switch ch := lx.peek(); ch {
		case ' ', '\t', '\r', '\n', '|', '&', ';', '<', '>', '(', ')', '#', '"', '\'', '$', '=':
			return sb.String()
		default:
			sb.WriteByte(lx.advance())
		}
	}
	return sb.String()
}

// scanAssignmentValue accumulates the value half of NAME=value. Quoted
// runs contribute their unquoted contents, so FOO="a b" captures "a b"
// as a single value.
func (lx *lexer) scanAssignmentValue() string {
	var sb strings.Builder
	for !lx.eof() {
		switch ch := lx.peek(); ch {
		case ' ', '\t', '\r', '\n', '|', '&', ';', '<', '>', '(', ')', '#':
			return sb.String()
		case '"', '\'':
			sb.WriteString(lx.scanQuoted(ch))
		default:
			sb.WriteByte(lx.advance())
		}
	}
	return sb.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentifierByte(s[i], i > 0) {
			return false
		}
	}
	return true
}

func isIdentifierByte(ch byte, interior bool) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		return true
	case ch >= '0' && ch <= '9':
		return interior
	default:
		return false
	}
}
