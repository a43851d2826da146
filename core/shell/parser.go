package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// RedirectKind classifies a stream redirection.
type RedirectKind int

const (
	// RedirectInput is "<": stdin from a file.
	RedirectInput RedirectKind = iota
	// RedirectOutput is ">": stdout to a file, truncating.
	RedirectOutput
	// RedirectOutputAppend is ">>": stdout to a file, appending.
	RedirectOutputAppend
	// RedirectError is "2>": stderr to a file, truncating.
	RedirectError
	// RedirectErrorAppend is "2>>": stderr to a file, appending.
	RedirectErrorAppend
)

func (k RedirectKind) String() string {
	switch k {
	case RedirectInput:
		return "<"
	case RedirectOutput:
		return ">"
	case RedirectOutputAppend:
		return ">>"
	case RedirectError:
		return "2>"
	case RedirectErrorAppend:
		return "2>>"
	default:
		return fmt.Sprintf("RedirectKind(%d)", int(k))
	}
}

// Redirect reroutes one stream of a pipeline segment.
type Redirect struct {
	Kind RedirectKind
	// Target is the filename to read or write. Empty when the target is a
	// file descriptor duplication.
	Target string
	// TargetFD is the descriptor to duplicate onto the source descriptor,
	// set when the redirection target parses cleanly as an integer
	// (e.g. "2>&1" or "2> 1"). -1 otherwise.
	TargetFD int
}

// Segment is one command within a |-separated chain.
type Segment struct {
	// Name is the command word.
	Name string
	// Args holds the unexpanded argument strings, in order.
	Args []string
	// Redirects holds the segment's redirections, in order.
	Redirects []Redirect
	// Env holds assignments local to this segment.
	Env map[string]string
}

// ParsedCommand is a whole parsed pipeline.
type ParsedCommand struct {
	Segments []*Segment
	// Background is set when the pipeline ends with "&".
	Background bool
	// Env holds assignments that precede the first command word and apply
	// to the whole pipeline.
	Env map[string]string
}

// ParseError describes a structural problem in the input, located at the
// offending token.
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// Parse consumes a token stream produced by Tokenize and builds a
// ParsedCommand. It fails closed: trailing tokens after a complete
// pipeline are an error rather than being silently ignored.
func Parse(tokens []Token) (*ParsedCommand, error) {
	p := &parser{tokens: tokens}
	return p.parse()
}

// ParseString tokenizes and parses input in one step.
func ParseString(input string) (*ParsedCommand, error) {
	return Parse(Tokenize(input))
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Token: tok}
}

func (p *parser) parse() (*ParsedCommand, error) {
	out := &ParsedCommand{Env: make(map[string]string)}

	// Assignments before any command word apply pipeline-wide.
	for p.peek().Kind == TokenAssignment {
		name, value := splitAssignment(p.next().Text)
		out.Env[name] = value
	}

	if p.peek().Kind == TokenEOF || p.peek().Kind == TokenNewline {
		return p.finish(out)
	}

	for {
		segment, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		out.Segments = append(out.Segments, segment)

		if p.peek().Kind != TokenPipe {
			break
		}
		p.next()
	}

	if p.peek().Kind == TokenBackground {
		out.Background = true
		p.next()
	}

	switch tok := p.peek(); tok.Kind {
	case TokenEOF, TokenNewline:
		return p.finish(out)
	default:
		return nil, p.errorf(tok, "unexpected %s after pipeline", tok)
	}
}

// finish accepts trailing newlines and requires EOF after them, so a
// second statement on a later line is an error rather than silently
// dropped input.
func (p *parser) finish(out *ParsedCommand) (*ParsedCommand, error) {
	for p.peek().Kind == TokenNewline {
		p.next()
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after pipeline", tok)
	}
	return out, nil
}

func (p *parser) parseSegment() (*Segment, error) {
	tok := p.next()
	if !tok.IsWordlike() || tok.Kind == TokenVariable {
		return nil, p.errorf(tok, "expected command, got %s", tok)
	}

	segment := &Segment{Name: tok.Text, Env: make(map[string]string)}

	for {
		switch tok := p.peek(); tok.Kind {
		case TokenWord, TokenString, TokenVariable:
			segment.Args = append(segment.Args, p.next().Text)

		case TokenAssignment:
			name, value := splitAssignment(p.next().Text)
			segment.Env[name] = value

		case TokenRedirectIn, TokenRedirectOut, TokenRedirectAppend,
			TokenRedirectErr, TokenRedirectErrAppend:
			redirect, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			segment.Redirects = append(segment.Redirects, redirect)

		case TokenPipe, TokenBackground, TokenSemicolon, TokenAnd, TokenOr,
			TokenNewline, TokenEOF:
			return segment, nil

		default:
			return nil, p.errorf(tok, "unexpected %s in command", tok)
		}
	}
}

func (p *parser) parseRedirect() (Redirect, error) {
	op := p.next()

	var kind RedirectKind
	switch op.Kind {
	case TokenRedirectIn:
		kind = RedirectInput
	case TokenRedirectOut:
		kind = RedirectOutput
	case TokenRedirectAppend:
		kind = RedirectOutputAppend
	case TokenRedirectErr:
		kind = RedirectError
	case TokenRedirectErrAppend:
		kind = RedirectErrorAppend
	}

	target := p.peek()

	// "2>&1" lexes as 2>, &, 1: treat the ampersand form as descriptor
	// duplication directly.
	if target.Kind == TokenBackground {
		p.next()
		fdTok := p.peek()
		fd, err := strconv.Atoi(fdTok.Text)
		if fdTok.Kind != TokenWord || err != nil {
			return Redirect{}, p.errorf(fdTok, "missing file descriptor after %s&", op.Text)
		}
		p.next()
		return Redirect{Kind: kind, TargetFD: fd}, nil
	}

	if target.Kind != TokenWord && target.Kind != TokenString && target.Kind != TokenVariable {
		return Redirect{}, p.errorf(target, "missing redirection target after %s", op.Text)
	}
	p.next()

	// A bare integer target is a descriptor duplication request, not a
	// filename.
	if target.Kind == TokenWord {
		if fd, err := strconv.Atoi(target.Text); err == nil {
			return Redirect{Kind: kind, TargetFD: fd}, nil
		}
	}

	return Redirect{Kind: kind, Target: target.Text, TargetFD: -1}, nil
}

func splitAssignment(text string) (name, value string) {
	parts := strings.SplitN(text, "=", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
