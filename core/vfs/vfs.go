package vfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vterm/vconsole/core/events"
)

// EventOp is a structural filesystem event kind.
type EventOp int

const (
	FileCreated EventOp = iota
	FileChanged
	FileDeleted
	DirCreated
	DirDeleted
	MountAdded
	MountRemoved
)

func (op EventOp) String() string {
	switch op {
	case FileCreated:
		return "file-created"
	case FileChanged:
		return "file-changed"
	case FileDeleted:
		return "file-deleted"
	case DirCreated:
		return "dir-created"
	case DirDeleted:
		return "dir-deleted"
	case MountAdded:
		return "mount-added"
	case MountRemoved:
		return "mount-removed"
	default:
		return "unknown"
	}
}

// Event is a structural change notification.
type Event struct {
	Op   EventOp
	Path string
}

// Mount attaches a provider at a path prefix.
type Mount struct {
	// Path is the directory the provider is mounted at, always resolved.
	Path     string
	Provider Provider
	ReadOnly bool
}

// FS is the unified virtual filesystem: a mount table over storage
// providers plus a path resolution cache. All operations are serialized
// by an internal lock since the cache is not safe against interleaved
// mutation of the same path.
type FS struct {
	mu sync.Mutex
	// mounts is kept sorted deepest path first so the first prefix match
	// is the longest one.
	mounts    []Mount
	pathCache map[string]cacheEntry

	hub events.Hub[Event]
}

type cacheEntry struct {
	provider Provider
	ino      int64
	parent   int64
	name     string
}

const maxSymlinkHops = 40

// New creates a filesystem with root mounted at "/". The root mount can
// never be removed.
func New(root Provider) *FS {
	return &FS{
		mounts:    []Mount{{Path: "/", Provider: root}},
		pathCache: make(map[string]cacheEntry),
	}
}

// Subscribe registers a handler for all structural events.
func (v *FS) Subscribe(fn func(Event)) (cancel func()) {
	return v.hub.Subscribe(fn)
}

// Watch invokes handler for events whose path equals or is nested under
// path. The returned function cancels the watch.
func (v *FS) Watch(path string, handler func(Event)) (cancel func()) {
	path = Resolve(path)
	return v.hub.Subscribe(func(ev Event) {
		if path == "/" || ev.Path == path || strings.HasPrefix(ev.Path, path+"/") {
			handler(ev)
		}
	})
}

// AddMount attaches a provider at path. Mount paths are unique.
func (v *FS) AddMount(path string, provider Provider, readOnly bool) error {
	path = Resolve(path)

	v.mu.Lock()
	for _, m := range v.mounts {
		if m.Path == path {
			v.mu.Unlock()
			return fmt.Errorf("mount %q: %w", path, ErrExist)
		}
	}
	v.mounts = append(v.mounts, Mount{Path: path, Provider: provider, ReadOnly: readOnly})
	sort.Slice(v.mounts, func(i, j int) bool {
		return len(v.mounts[i].Path) > len(v.mounts[j].Path)
	})
	// Paths under the new mount now resolve against its provider.
	v.invalidatePrefix(path)
	v.mu.Unlock()

	v.hub.Publish(Event{Op: MountAdded, Path: path})
	return nil
}

// RemoveMount detaches the provider mounted at path. The root mount is
// un-removable.
func (v *FS) RemoveMount(path string) error {
	path = Resolve(path)
	if path == "/" {
		return fmt.Errorf("unmount /: %w", ErrInvalidPath)
	}

	v.mu.Lock()
	idx := -1
	for i, m := range v.mounts {
		if m.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.mu.Unlock()
		return fmt.Errorf("unmount %q: %w", path, ErrNotFound)
	}
	v.mounts = append(v.mounts[:idx], v.mounts[idx+1:]...)
	v.invalidatePrefix(path)
	v.mu.Unlock()

	v.hub.Publish(Event{Op: MountRemoved, Path: path})
	return nil
}

// Mounts returns a copy of the mount table, deepest mount first.
func (v *FS) Mounts() []Mount {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Mount, len(v.mounts))
	copy(out, v.mounts)
	return out
}

// resolveMount selects the mount whose path is the longest prefix of
// path and returns it with the mount-relative remainder.
func (v *FS) resolveMount(path string) (*Mount, string) {
	for i := range v.mounts {
		m := &v.mounts[i]
		switch {
		case m.Path == "/":
			return m, path
		case path == m.Path:
			return m, "/"
		case strings.HasPrefix(path, m.Path+"/"):
			return m, strings.TrimPrefix(path, m.Path)
		}
	}
	// The root mount always matches; unreachable.
	return &v.mounts[len(v.mounts)-1], path
}

type resolved struct {
	mount *Mount
	entry cacheEntry
	meta  *INode
	path  string // full resolved path
}

// lookup walks path to its inode. Intermediate symlinks are always
// followed; the final component is followed only when followFinal is
// set. Callers must hold v.mu.
func (v *FS) lookup(ctx context.Context, path string, followFinal bool) (*resolved, error) {
	res, err := v.lookupNoFollow(ctx, path, maxSymlinkHops)
	if err != nil {
		return nil, err
	}

	hops := maxSymlinkHops
	for followFinal && res.meta.Kind == KindSymlink {
		hops--
		if hops <= 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrTooManyLinks)
		}
		target := res.meta.SymlinkTarget
		if !strings.HasPrefix(target, "/") {
			target = Join(Dir(res.path), target)
		}
		res, err = v.lookupNoFollow(ctx, target, hops)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (v *FS) lookupNoFollow(ctx context.Context, path string, hops int) (*resolved, error) {
	if hops <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrTooManyLinks)
	}

	full := Resolve(path)
	mount, rel := v.resolveMount(full)

	if entry, ok := v.pathCache[full]; ok {
		meta, err := entry.provider.Stat(ctx, entry.ino)
		if err == nil {
			return &resolved{mount: mount, entry: entry, meta: meta, path: full}, nil
		}
		// Stale entry, fall through to a fresh walk.
		delete(v.pathCache, full)
	}

	cur := cacheEntry{provider: mount.Provider, ino: mount.Provider.Root(), parent: -1}
	meta, err := cur.provider.Stat(ctx, cur.ino)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}

	parts := splitPath(rel)
	for i, part := range parts {
		if meta.Kind == KindSymlink {
			// Intermediate symlink: restart resolution against its target.
			base := Join(append([]string{mount.Path}, parts[:i]...)...)
			target := meta.SymlinkTarget
			if !strings.HasPrefix(target, "/") {
				target = Join(Dir(base), target)
			}
			rest := append([]string{target}, parts[i:]...)
			return v.lookupNoFollow(ctx, Join(rest...), hops-1)
		}
		if meta.Kind != KindDirectory {
			return nil, fmt.Errorf("%s: %w", full, ErrNotDirectory)
		}

		entries, err := cur.provider.ReadDir(ctx, cur.ino)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		found := false
		for _, ent := range entries {
			if ent.Name == part {
				cur = cacheEntry{provider: cur.provider, ino: ent.Ino, parent: cur.ino, name: part}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", full, ErrNotFound)
		}

		meta, err = cur.provider.Stat(ctx, cur.ino)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
	}

	v.pathCache[full] = cur
	return &resolved{mount: mount, entry: cur, meta: meta, path: full}, nil
}

// Stat returns metadata for the inode at path, following symlinks.
func (v *FS) Stat(ctx context.Context, path string) (*INode, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.lookup(ctx, path, true)
	if err != nil {
		return nil, err
	}
	return res.meta, nil
}

// Lstat returns metadata without following a final symlink.
func (v *FS) Lstat(ctx context.Context, path string) (*INode, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.lookup(ctx, path, false)
	if err != nil {
		return nil, err
	}
	return res.meta, nil
}

// ReadFile returns the contents of the file at path.
func (v *FS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.lookup(ctx, path, true)
	if err != nil {
		return nil, err
	}
	if res.meta.Kind == KindDirectory {
		return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	return res.entry.provider.ReadFile(ctx, res.entry.ino)
}

// WriteFile writes data to path, creating the file (with perm) if it
// does not exist and truncating it if it does. Emits FileCreated or
// FileChanged accordingly.
func (v *FS) WriteFile(ctx context.Context, path string, data []byte, perm fs.FileMode) error {
	path = Resolve(path)

	v.mu.Lock()
	ev, err := v.writeFileLocked(ctx, path, data, perm)
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.hub.Publish(ev)
	return nil
}

func (v *FS) writeFileLocked(ctx context.Context, path string, data []byte, perm fs.FileMode) (Event, error) {
	mount, _ := v.resolveMount(path)
	if mount.ReadOnly {
		return Event{}, fmt.Errorf("%s: %w", path, ErrReadOnly)
	}

	res, err := v.lookup(ctx, path, true)
	switch {
	case err == nil:
		if res.meta.Kind == KindDirectory {
			return Event{}, fmt.Errorf("%s: %w", path, ErrIsDirectory)
		}
		if err := res.entry.provider.WriteFile(ctx, res.entry.ino, data); err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		return Event{Op: FileChanged, Path: path}, nil

	case isNotFound(err):
		parent, perr := v.lookup(ctx, Dir(path), true)
		if perr != nil {
			return Event{}, perr
		}
		if !parent.meta.IsDir() {
			return Event{}, fmt.Errorf("%s: %w", Dir(path), ErrNotDirectory)
		}

		meta, err := parent.entry.provider.CreateInode(ctx, KindFile, perm)
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		name := Base(path, "")
		if err := parent.entry.provider.Link(ctx, parent.entry.ino, name, meta.Ino); err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := parent.entry.provider.WriteFile(ctx, meta.Ino, data); err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		v.pathCache[path] = cacheEntry{
			provider: parent.entry.provider,
			ino:      meta.Ino,
			parent:   parent.entry.ino,
			name:     name,
		}
		return Event{Op: FileCreated, Path: path}, nil

	default:
		return Event{}, err
	}
}

// AppendFile appends data to the file at path, degrading to WriteFile
// (mode 0644) when the file does not exist.
func (v *FS) AppendFile(ctx context.Context, path string, data []byte) error {
	path = Resolve(path)

	v.mu.Lock()
	ev, err := func() (Event, error) {
		res, err := v.lookup(ctx, path, true)
		if isNotFound(err) {
			return v.writeFileLocked(ctx, path, data, 0644)
		} else if err != nil {
			return Event{}, err
		}

		if res.meta.Kind == KindDirectory {
			return Event{}, fmt.Errorf("%s: %w", path, ErrIsDirectory)
		}
		mount, _ := v.resolveMount(path)
		if mount.ReadOnly {
			return Event{}, fmt.Errorf("%s: %w", path, ErrReadOnly)
		}

		existing, err := res.entry.provider.ReadFile(ctx, res.entry.ino)
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := res.entry.provider.WriteFile(ctx, res.entry.ino, append(existing, data...)); err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		return Event{Op: FileChanged, Path: path}, nil
	}()
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.hub.Publish(ev)
	return nil
}

// Mkdir creates a single directory at path, failing if an inode already
// exists there or the parent is missing.
func (v *FS) Mkdir(ctx context.Context, path string, perm fs.FileMode) error {
	path = Resolve(path)

	v.mu.Lock()
	err := v.mkdirLocked(ctx, path, perm)
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.hub.Publish(Event{Op: DirCreated, Path: path})
	return nil
}

func (v *FS) mkdirLocked(ctx context.Context, path string, perm fs.FileMode) error {
	mount, _ := v.resolveMount(path)
	if mount.ReadOnly {
		return fmt.Errorf("%s: %w", path, ErrReadOnly)
	}

	if _, err := v.lookup(ctx, path, false); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExist)
	} else if !isNotFound(err) {
		return err
	}

	parent, err := v.lookup(ctx, Dir(path), true)
	if err != nil {
		return err
	}
	if !parent.meta.IsDir() {
		return fmt.Errorf("%s: %w", Dir(path), ErrNotDirectory)
	}

	meta, err := parent.entry.provider.CreateInode(ctx, KindDirectory, perm)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	name := Base(path, "")
	if err := parent.entry.provider.Link(ctx, parent.entry.ino, name, meta.Ino); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	v.pathCache[path] = cacheEntry{
		provider: parent.entry.provider,
		ino:      meta.Ino,
		parent:   parent.entry.ino,
		name:     name,
	}
	return nil
}

// MkdirAll creates path and any missing ancestors. Missing ancestors get
// mode 0755; the final directory gets perm. Existing directories are
// left untouched, so MkdirAll is idempotent.
func (v *FS) MkdirAll(ctx context.Context, path string, perm fs.FileMode) error {
	path = Resolve(path)

	var created []string
	v.mu.Lock()
	err := func() error {
		parts := splitPath(path)
		soFar := ""
		for i, part := range parts {
			soFar += "/" + part
			if _, err := v.lookup(ctx, soFar, true); err == nil {
				continue
			} else if !isNotFound(err) {
				return err
			}

			mode := fs.FileMode(0755)
			if i == len(parts)-1 {
				mode = perm
			}
			if err := v.mkdirLocked(ctx, soFar, mode); err != nil {
				return err
			}
			created = append(created, soFar)
		}
		return nil
	}()
	v.mu.Unlock()

	if err != nil {
		return err
	}
	for _, dir := range created {
		v.hub.Publish(Event{Op: DirCreated, Path: dir})
	}
	return nil
}

// ReadDir lists the directory at path, sorted by name.
func (v *FS) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.lookup(ctx, path, true)
	if err != nil {
		return nil, err
	}
	if !res.meta.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return res.entry.provider.ReadDir(ctx, res.entry.ino)
}

// Remove deletes the file, symlink or empty directory at path. Removing
// a non-empty directory fails with ErrNotEmpty.
func (v *FS) Remove(ctx context.Context, path string) error {
	path = Resolve(path)
	if path == "/" {
		return fmt.Errorf("remove /: %w", ErrInvalidPath)
	}

	v.mu.Lock()
	ev, err := v.removeLocked(ctx, path)
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.hub.Publish(ev)
	return nil
}

func (v *FS) removeLocked(ctx context.Context, path string) (Event, error) {
	mount, _ := v.resolveMount(path)
	if mount.ReadOnly {
		return Event{}, fmt.Errorf("%s: %w", path, ErrReadOnly)
	}

	res, err := v.lookup(ctx, path, false)
	if err != nil {
		return Event{}, err
	}
	if res.entry.parent < 0 {
		return Event{}, fmt.Errorf("%s: %w", path, ErrInvalidPath)
	}

	if res.meta.IsDir() {
		children, err := res.entry.provider.ReadDir(ctx, res.entry.ino)
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", path, err)
		}
		if len(children) > 0 {
			return Event{}, fmt.Errorf("%s: %w", path, ErrNotEmpty)
		}
	}

	if err := res.entry.provider.Unlink(ctx, res.entry.parent, res.entry.name); err != nil {
		return Event{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := res.entry.provider.DeleteInode(ctx, res.entry.ino); err != nil {
		return Event{}, fmt.Errorf("%s: %w", path, err)
	}
	v.invalidatePrefix(path)

	op := FileDeleted
	if res.meta.IsDir() {
		op = DirDeleted
	}
	return Event{Op: op, Path: path}, nil
}

// RemoveAll deletes path and any children, depth-first.
func (v *FS) RemoveAll(ctx context.Context, path string) error {
	path = Resolve(path)
	if path == "/" {
		return fmt.Errorf("remove /: %w", ErrInvalidPath)
	}

	var evs []Event
	v.mu.Lock()
	err := v.removeAllLocked(ctx, path, &evs)
	v.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range evs {
		v.hub.Publish(ev)
	}
	return nil
}

func (v *FS) removeAllLocked(ctx context.Context, path string, evs *[]Event) error {
	res, err := v.lookup(ctx, path, false)
	if err != nil {
		return err
	}

	if res.meta.IsDir() {
		children, err := res.entry.provider.ReadDir(ctx, res.entry.ino)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, child := range children {
			if err := v.removeAllLocked(ctx, Join(path, child.Name), evs); err != nil {
				return err
			}
		}
	}

	ev, err := v.removeLocked(ctx, path)
	if err != nil {
		return err
	}
	*evs = append(*evs, ev)
	return nil
}

// Symlink creates a symlink at linkPath pointing at target. The target
// is also stored as the inode's contents and need not exist.
func (v *FS) Symlink(ctx context.Context, target, linkPath string) error {
	linkPath = Resolve(linkPath)

	v.mu.Lock()
	err := func() error {
		mount, _ := v.resolveMount(linkPath)
		if mount.ReadOnly {
			return fmt.Errorf("%s: %w", linkPath, ErrReadOnly)
		}
		if _, err := v.lookup(ctx, linkPath, false); err == nil {
			return fmt.Errorf("%s: %w", linkPath, ErrExist)
		} else if !isNotFound(err) {
			return err
		}

		parent, err := v.lookup(ctx, Dir(linkPath), true)
		if err != nil {
			return err
		}

		meta, err := parent.entry.provider.CreateInode(ctx, KindSymlink, 0777)
		if err != nil {
			return fmt.Errorf("%s: %w", linkPath, err)
		}
		if _, err := parent.entry.provider.UpdateInode(ctx, meta.Ino, InodeUpdate{SymlinkTarget: &target}); err != nil {
			return fmt.Errorf("%s: %w", linkPath, err)
		}
		if err := parent.entry.provider.WriteFile(ctx, meta.Ino, []byte(target)); err != nil {
			return fmt.Errorf("%s: %w", linkPath, err)
		}
		name := Base(linkPath, "")
		if err := parent.entry.provider.Link(ctx, parent.entry.ino, name, meta.Ino); err != nil {
			return fmt.Errorf("%s: %w", linkPath, err)
		}
		v.pathCache[linkPath] = cacheEntry{
			provider: parent.entry.provider,
			ino:      meta.Ino,
			parent:   parent.entry.ino,
			name:     name,
		}
		return nil
	}()
	v.mu.Unlock()

	if err != nil {
		return err
	}
	v.hub.Publish(Event{Op: FileCreated, Path: linkPath})
	return nil
}

// Readlink returns the target of the symlink at path.
func (v *FS) Readlink(ctx context.Context, path string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.lookup(ctx, path, false)
	if err != nil {
		return "", err
	}
	if res.meta.Kind != KindSymlink {
		return "", fmt.Errorf("%s: not a symlink: %w", path, ErrInvalidPath)
	}
	return res.meta.SymlinkTarget, nil
}

// Rename moves oldPath to newPath. Both must live on the same mount;
// the move is an O(1) directory entry change, not a copy.
func (v *FS) Rename(ctx context.Context, oldPath, newPath string) error {
	oldPath = Resolve(oldPath)
	newPath = Resolve(newPath)

	var evs []Event
	v.mu.Lock()
	err := func() error {
		oldMount, _ := v.resolveMount(oldPath)
		newMount, _ := v.resolveMount(newPath)
		if oldMount.Provider != newMount.Provider {
			return fmt.Errorf("rename %s -> %s: %w", oldPath, newPath, ErrCrossMount)
		}
		if oldMount.ReadOnly {
			return fmt.Errorf("%s: %w", oldPath, ErrReadOnly)
		}

		res, err := v.lookup(ctx, oldPath, false)
		if err != nil {
			return err
		}
		if res.entry.parent < 0 {
			return fmt.Errorf("%s: %w", oldPath, ErrInvalidPath)
		}

		newParent, err := v.lookup(ctx, Dir(newPath), true)
		if err != nil {
			return err
		}
		if !newParent.meta.IsDir() {
			return fmt.Errorf("%s: %w", Dir(newPath), ErrNotDirectory)
		}

		// Replace a pre-existing non-directory destination.
		if dst, err := v.lookup(ctx, newPath, false); err == nil {
			if dst.meta.IsDir() {
				return fmt.Errorf("%s: %w", newPath, ErrIsDirectory)
			}
			ev, err := v.removeLocked(ctx, newPath)
			if err != nil {
				return err
			}
			evs = append(evs, ev)
		} else if !isNotFound(err) {
			return err
		}

		newName := Base(newPath, "")
		prov := res.entry.provider
		if err := prov.Link(ctx, newParent.entry.ino, newName, res.entry.ino); err != nil {
			return fmt.Errorf("%s: %w", newPath, err)
		}
		if err := prov.Unlink(ctx, res.entry.parent, res.entry.name); err != nil {
			return fmt.Errorf("%s: %w", oldPath, err)
		}
		v.invalidatePrefix(oldPath)
		v.pathCache[newPath] = cacheEntry{
			provider: prov,
			ino:      res.entry.ino,
			parent:   newParent.entry.ino,
			name:     newName,
		}

		if res.meta.IsDir() {
			evs = append(evs, Event{Op: DirDeleted, Path: oldPath}, Event{Op: DirCreated, Path: newPath})
		} else {
			evs = append(evs, Event{Op: FileDeleted, Path: oldPath}, Event{Op: FileCreated, Path: newPath})
		}
		return nil
	}()
	v.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range evs {
		v.hub.Publish(ev)
	}
	return nil
}

// Chmod changes the permission bits of the inode at path.
func (v *FS) Chmod(ctx context.Context, path string, perm fs.FileMode) error {
	return v.update(ctx, path, InodeUpdate{Perm: &perm})
}

// Chown changes the owner and group of the inode at path.
func (v *FS) Chown(ctx context.Context, path string, uid, gid int) error {
	return v.update(ctx, path, InodeUpdate{UID: &uid, GID: &gid})
}

// Chtimes changes the access and modification times of the inode at
// path.
func (v *FS) Chtimes(ctx context.Context, path string, atime, mtime time.Time) error {
	return v.update(ctx, path, InodeUpdate{AccessedAt: &atime, ModifiedAt: &mtime})
}

func (v *FS) update(ctx context.Context, path string, update InodeUpdate) error {
	path = Resolve(path)

	v.mu.Lock()
	defer v.mu.Unlock()

	mount, _ := v.resolveMount(path)
	if mount.ReadOnly {
		return fmt.Errorf("%s: %w", path, ErrReadOnly)
	}

	res, err := v.lookup(ctx, path, true)
	if err != nil {
		return err
	}
	if _, err := res.entry.provider.UpdateInode(ctx, res.entry.ino, update); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// invalidatePrefix drops cache entries at or under path. Callers must
// hold v.mu.
func (v *FS) invalidatePrefix(path string) {
	for key := range v.pathCache {
		if key == path || strings.HasPrefix(key, path+"/") {
			delete(v.pathCache, key)
		}
	}
}

func splitPath(p string) []string {
	p = strings.Trim(Resolve(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
