package config

import (
	"context"
	"fmt"
	"time"

	"github.com/vterm/vconsole/core/vfs"
)

// BuildFS assembles the virtual filesystem described by the mount
// table. The mount at "/" becomes the root; a configuration without one
// gets an in-memory root implicitly. The user's home directory is
// materialized so sessions can start there.
func (c *Configuration) BuildFS(ctx context.Context) (*vfs.FS, error) {
	now := time.Now

	var root vfs.Provider
	var rest []MountConfig
	for _, m := range c.Mounts {
		if m.Path == "/" {
			provider, err := buildProvider(m, now)
			if err != nil {
				return nil, err
			}
			root = provider
			continue
		}
		rest = append(rest, m)
	}
	if root == nil {
		root = vfs.NewMemoryProvider(now)
	}

	fs := vfs.New(root)
	for _, m := range rest {
		provider, err := buildProvider(m, now)
		if err != nil {
			return nil, err
		}
		if err := fs.AddMount(m.Path, provider, m.ReadOnly); err != nil {
			return nil, fmt.Errorf("mount %s: %w", m.Path, err)
		}
	}

	if c.Home != "" {
		if err := fs.MkdirAll(ctx, c.Home, 0755); err != nil {
			return nil, fmt.Errorf("creating home %s: %w", c.Home, err)
		}
	}
	return fs, nil
}

func buildProvider(m MountConfig, now vfs.TimeSource) (vfs.Provider, error) {
	switch m.Backend {
	case BackendMemory:
		return vfs.NewMemoryProvider(now), nil
	case BackendBolt:
		return vfs.OpenBoltProvider(m.Source, now)
	default:
		return nil, fmt.Errorf("mount %s: unknown backend %q", m.Path, m.Backend)
	}
}

// SessionEnv builds the initial environment for a new session from the
// configured identity and env map.
func (c *Configuration) SessionEnv() map[string]string {
	env := make(map[string]string, len(c.Env)+4)
	for k, v := range c.Env {
		env[k] = v
	}
	env["USER"] = c.User
	env["HOME"] = c.Home
	env["HOSTNAME"] = c.Hostname
	if c.Prompt != "" {
		env["PS1"] = c.Prompt
	}
	return env
}
