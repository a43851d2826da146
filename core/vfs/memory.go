package vfs

import (
	"context"
	"io/fs"
	"sort"
	"sync"
	"time"
)

// TimeSource supplies timestamps so tests can pin the clock.
type TimeSource func() time.Time

// MemoryProvider keeps all inodes, contents and directory entries in
// RAM. It is the default backend and the reference implementation of the
// Provider contract.
type MemoryProvider struct {
	mu       sync.RWMutex
	inodes   map[int64]*memInode
	inodeCtr int64

	now TimeSource
}

type memInode struct {
	meta INode
	// contents is set for files and symlinks (a symlink stores its target
	// as its contents as well as in the metadata).
	contents []byte
	// children is set for directories.
	children map[string]int64
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider builds a provider containing only a root directory.
func NewMemoryProvider(now TimeSource) *MemoryProvider {
	if now == nil {
		now = time.Now
	}

	p := &MemoryProvider{
		inodes: make(map[int64]*memInode),
		now:    now,
	}

	ts := now()
	p.inodeCtr++
	p.inodes[p.inodeCtr] = &memInode{
		meta: INode{
			Ino:        p.inodeCtr,
			Kind:       KindDirectory,
			Perm:       0755,
			CreatedAt:  ts,
			ModifiedAt: ts,
			AccessedAt: ts,
			LinkCount:  1,
		},
		children: make(map[string]int64),
	}

	return p
}

// Root implements Provider.Root.
func (p *MemoryProvider) Root() int64 {
	return 1
}

func (p *MemoryProvider) get(ino int64) (*memInode, error) {
	node, ok := p.inodes[ino]
	if !ok {
		return nil, ErrNotFound
	}
	return node, nil
}

// Stat implements Provider.Stat.
func (p *MemoryProvider) Stat(ctx context.Context, ino int64) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	node, err := p.get(ino)
	if err != nil {
		return nil, err
	}
	meta := node.meta
	return &meta, nil
}

// ReadFile implements Provider.ReadFile.
func (p *MemoryProvider) ReadFile(ctx context.Context, ino int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	node, err := p.get(ino)
	if err != nil {
		return nil, err
	}
	if node.meta.Kind == KindDirectory {
		return nil, ErrIsDirectory
	}

	out := make([]byte, len(node.contents))
	copy(out, node.contents)
	return out, nil
}

// WriteFile implements Provider.WriteFile.
func (p *MemoryProvider) WriteFile(ctx context.Context, ino int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.get(ino)
	if err != nil {
		return err
	}
	if node.meta.Kind == KindDirectory {
		return ErrIsDirectory
	}

	node.contents = make([]byte, len(data))
	copy(node.contents, data)
	node.meta.Size = int64(len(data))
	node.meta.ModifiedAt = p.now()
	return nil
}

// CreateInode implements Provider.CreateInode.
func (p *MemoryProvider) CreateInode(ctx context.Context, kind FileKind, perm fs.FileMode) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := p.now()
	p.inodeCtr++
	node := &memInode{
		meta: INode{
			Ino:        p.inodeCtr,
			Kind:       kind,
			Perm:       perm,
			CreatedAt:  ts,
			ModifiedAt: ts,
			AccessedAt: ts,
		},
	}
	if kind == KindDirectory {
		node.children = make(map[string]int64)
	}
	p.inodes[p.inodeCtr] = node

	meta := node.meta
	return &meta, nil
}

// DeleteInode implements Provider.DeleteInode.
func (p *MemoryProvider) DeleteInode(ctx context.Context, ino int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.get(ino)
	if err != nil {
		return err
	}
	if node.meta.Kind == KindDirectory && len(node.children) > 0 {
		return ErrNotEmpty
	}

	delete(p.inodes, ino)
	return nil
}

// UpdateInode implements Provider.UpdateInode.
func (p *MemoryProvider) UpdateInode(ctx context.Context, ino int64, update InodeUpdate) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	node, err := p.get(ino)
	if err != nil {
		return nil, err
	}

	applyUpdate(&node.meta, update)

	meta := node.meta
	return &meta, nil
}

// ReadDir implements Provider.ReadDir.
func (p *MemoryProvider) ReadDir(ctx context.Context, ino int64) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	node, err := p.get(ino)
	if err != nil {
		return nil, err
	}
	if node.meta.Kind != KindDirectory {
		return nil, ErrNotDirectory
	}

	var entries []DirEntry
	for name, childIno := range node.children {
		child, ok := p.inodes[childIno]
		if !ok {
			continue
		}
		entries = append(entries, DirEntry{Name: name, Ino: childIno, Kind: child.meta.Kind})
	}
	sortEntries(entries)
	return entries, nil
}

// Exists implements Provider.Exists.
func (p *MemoryProvider) Exists(ctx context.Context, ino int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.inodes[ino]
	return ok
}

// Link implements Provider.Link.
func (p *MemoryProvider) Link(ctx context.Context, dir int64, name string, child int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	parent, err := p.get(dir)
	if err != nil {
		return err
	}
	if parent.meta.Kind != KindDirectory {
		return ErrNotDirectory
	}
	if _, exists := parent.children[name]; exists {
		return ErrExist
	}

	node, err := p.get(child)
	if err != nil {
		return err
	}

	parent.children[name] = child
	parent.meta.ModifiedAt = p.now()
	node.meta.LinkCount++
	return nil
}

// Unlink implements Provider.Unlink.
func (p *MemoryProvider) Unlink(ctx context.Context, dir int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	parent, err := p.get(dir)
	if err != nil {
		return err
	}
	if parent.meta.Kind != KindDirectory {
		return ErrNotDirectory
	}

	childIno, ok := parent.children[name]
	if !ok {
		return ErrNotFound
	}

	delete(parent.children, name)
	parent.meta.ModifiedAt = p.now()
	if child, ok := p.inodes[childIno]; ok && child.meta.LinkCount > 0 {
		child.meta.LinkCount--
	}
	return nil
}

func applyUpdate(meta *INode, update InodeUpdate) {
	if update.Perm != nil {
		meta.Perm = *update.Perm
	}
	if update.UID != nil {
		meta.UID = *update.UID
	}
	if update.GID != nil {
		meta.GID = *update.GID
	}
	if update.ModifiedAt != nil {
		meta.ModifiedAt = *update.ModifiedAt
	}
	if update.AccessedAt != nil {
		meta.AccessedAt = *update.AccessedAt
	}
	if update.SymlinkTarget != nil {
		meta.SymlinkTarget = *update.SymlinkTarget
	}
}

func sortEntries(entries []DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}
