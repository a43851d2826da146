package console

import (
	"context"
	"strings"
)

// Word expansion happens at execution time so the parser's AST stays
// expansion-agnostic. Order matters: tilde first, then variables, then
// command substitution, then glob. Each later step operates on the
// textual result of the earlier ones.

// expandArgs expands one segment's arguments. Glob expansion can grow
// the argument list; everything else is 1:1.
func (s *Session) expandArgs(ctx context.Context, args []string, env *Environ) []string {
	var out []string
	for _, arg := range args {
		expanded := s.expandWord(ctx, arg, env)

		if strings.ContainsRune(expanded, '*') {
			if matches := s.expandGlob(ctx, expanded); len(matches) > 0 {
				out = append(out, matches...)
				continue
			}
		}
		out = append(out, expanded)
	}
	return out
}

// expandWord applies tilde, variable and command substitution.
func (s *Session) expandWord(ctx context.Context, word string, env *Environ) string {
	word = expandTilde(word, env.Get(EnvHome))
	word = expandVars(word, env.Lookup)
	word = s.expandCommandSubst(ctx, word)
	return word
}

func expandTilde(word, home string) string {
	switch {
	case home == "":
		return word
	case word == "~":
		return home
	case strings.HasPrefix(word, "~/"):
		return home + word[1:]
	default:
		return word
	}
}

// expandVars substitutes $NAME, ${NAME} and ${NAME:-default}.
// References to undefined variables become the empty string unless a
// default is given.
func expandVars(word string, lookup func(string) (string, bool)) string {
	var sb strings.Builder
	for i := 0; i < len(word); {
		ch := word[i]
		if ch != '$' || i+1 >= len(word) {
			sb.WriteByte(ch)
			i++
			continue
		}

		if word[i+1] == '{' {
			end := strings.IndexByte(word[i:], '}')
			if end < 0 {
				sb.WriteByte(ch)
				i++
				continue
			}
			inner := word[i+2 : i+end]
			name, fallback := inner, ""
			hasFallback := false
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				name, fallback = inner[:idx], inner[idx+2:]
				hasFallback = true
			}
			if value, ok := lookup(name); ok && value != "" {
				sb.WriteString(value)
			} else if hasFallback {
				sb.WriteString(fallback)
			}
			i += end + 1
			continue
		}

		j := i + 1
		for j < len(word) && isVarNameByte(word[j], j > i+1) {
			j++
		}
		if j == i+1 {
			sb.WriteByte(ch)
			i++
			continue
		}
		value, _ := lookup(word[i+1 : j])
		sb.WriteString(value)
		i = j
	}
	return sb.String()
}

func isVarNameByte(ch byte, interior bool) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		return true
	case ch >= '0' && ch <= '9':
		return interior
	default:
		return false
	}
}

// expandCommandSubst replaces $(...) and `...` with the trimmed stdout
// of running the inner command. The caller already holds the session
// lock, so the inner pipeline runs through the internal entry point.
func (s *Session) expandCommandSubst(ctx context.Context, word string) string {
	var sb strings.Builder
	for i := 0; i < len(word); {
		switch {
		case word[i] == '$' && i+1 < len(word) && word[i+1] == '(':
			depth := 1
			j := i + 2
			for j < len(word) && depth > 0 {
				switch word[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth != 0 {
				sb.WriteByte(word[i])
				i++
				continue
			}
			sb.WriteString(s.runSubstitution(ctx, word[i+2:j-1]))
			i = j

		case word[i] == '`':
			end := strings.IndexByte(word[i+1:], '`')
			if end < 0 {
				sb.WriteByte(word[i])
				i++
				continue
			}
			sb.WriteString(s.runSubstitution(ctx, word[i+1:i+1+end]))
			i = i + end + 2

		default:
			sb.WriteByte(word[i])
			i++
		}
	}
	return sb.String()
}

func (s *Session) runSubstitution(ctx context.Context, input string) string {
	result := s.run(ctx, input)
	return strings.TrimRight(result.Stdout, "\n")
}

// expandGlob matches a *-pattern against the filesystem. A pattern with
// a slash is anchored at its directory part; a bare pattern starts at
// the working directory. No matches means the caller keeps the literal
// word.
func (s *Session) expandGlob(ctx context.Context, pattern string) []string {
	dir := s.Dir()
	name := pattern
	if idx := strings.LastIndexByte(pattern, '/'); idx >= 0 {
		dir = s.absPath(pattern[:idx])
		name = pattern[idx+1:]
	}
	if name == "" {
		return nil
	}

	matches, err := s.fs.Glob(ctx, name, dir)
	if err != nil {
		return nil
	}
	return matches
}
