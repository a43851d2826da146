package vfs

import (
	"context"
	"strings"
)

// Glob returns the absolute paths under dir whose names match pattern.
// The matcher is a deliberate simplification of POSIX globbing: only "*"
// is special (matching any run of characters within one name), and
// matching descends recursively into subdirectories. "?" and character
// classes are not supported.
func (v *FS) Glob(ctx context.Context, pattern, dir string) ([]string, error) {
	dir = Resolve(dir)

	var out []string
	if err := v.globDir(ctx, pattern, dir, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *FS) globDir(ctx context.Context, pattern, dir string, out *[]string) error {
	entries, err := v.ReadDir(ctx, dir)
	if err != nil {
		return err
	}

	for _, ent := range entries {
		full := Join(dir, ent.Name)
		if matchStar(pattern, ent.Name) {
			*out = append(*out, full)
		}
		if ent.Kind == KindDirectory {
			if err := v.globDir(ctx, pattern, full, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchStar matches name against a pattern where "*" matches any run of
// characters and everything else is literal.
func matchStar(pattern, name string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == name
	}

	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	name = name[len(parts[0]):]

	last := parts[len(parts)-1]
	if !strings.HasSuffix(name, last) {
		return false
	}
	name = name[:len(name)-len(last)]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(name, part)
		if idx < 0 {
			return false
		}
		name = name[idx+len(part):]
	}
	return true
}
