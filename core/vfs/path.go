package vfs

import "strings"

// Path helpers for the virtual namespace. All functions are pure string
// manipulation over /-rooted paths and perform no I/O.

// Resolve normalizes a path to an absolute, /-rooted form: "." segments
// are dropped, ".." pops the last retained segment (never rising above
// the root) and repeated separators collapse. Resolve is idempotent.
func Resolve(p string) string {
	var stack []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// Join concatenates path elements and resolves the result.
func Join(parts ...string) string {
	return Resolve(strings.Join(parts, "/"))
}

// Dir returns the parent directory of p.
func Dir(p string) string {
	p = Resolve(p)
	idx := strings.LastIndexByte(p, '/')
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}

// Base returns the last element of p; the root's base is "/". When strip
// is non-empty and the base ends with it, the suffix is removed
// (Base("/a/b.txt", ".txt") == "b").
func Base(p string, strip string) string {
	p = Resolve(p)
	if p == "/" {
		return "/"
	}
	base := p[strings.LastIndexByte(p, '/')+1:]
	if strip != "" && base != strip {
		base = strings.TrimSuffix(base, strip)
	}
	return base
}

// Ext returns the extension of p's base, including the leading dot, or
// "" if there is none.
func Ext(p string) string {
	base := Base(p, "")
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return ""
	}
	return base[idx:]
}
