// Package vfs implements a synthetic hierarchical filesystem: pure path
// algebra, an inode data model, pluggable storage providers and a mount
// table unifying them into one /-rooted namespace.
package vfs

import (
	"context"
	"errors"
	"io/fs"
	"time"
)

// Filesystem failure conditions. The os/io-fs sentinels are reused where
// one exists so errors.Is works across package boundaries.
var (
	ErrNotFound   = fs.ErrNotExist
	ErrExist      = fs.ErrExist
	ErrPermission = fs.ErrPermission

	ErrNotEmpty     = errors.New("directory not empty")
	ErrIsDirectory  = errors.New("is a directory")
	ErrNotDirectory = errors.New("not a directory")
	ErrReadOnly     = errors.New("read-only file system")
	ErrInvalidPath  = errors.New("invalid path")
	ErrCrossMount   = errors.New("cross-device link")
	ErrNoSpace      = errors.New("no space left on device")
	ErrTooManyLinks = errors.New("too many levels of symbolic links")
)

// FileKind is the type of object an inode describes.
type FileKind int

const (
	KindFile FileKind = iota
	KindDirectory
	KindSymlink
	KindHardlink
	KindBlockDevice
	KindCharDevice
	KindFIFO
)

func (k FileKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindHardlink:
		return "hardlink"
	case KindBlockDevice:
		return "block-device"
	case KindCharDevice:
		return "char-device"
	case KindFIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// INode is a filesystem object's metadata record, addressed by a number
// unique within its provider and independent of any path naming it.
type INode struct {
	Ino  int64       `json:"ino"`
	Kind FileKind    `json:"kind"`
	Perm fs.FileMode `json:"perm"`
	UID  int         `json:"uid"`
	GID  int         `json:"gid"`
	Size int64       `json:"size"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	AccessedAt time.Time `json:"accessed_at"`

	// LinkCount is the number of directory entries referencing the inode.
	LinkCount int `json:"link_count"`

	// SymlinkTarget is the link destination, set only for KindSymlink.
	SymlinkTarget string `json:"symlink_target,omitempty"`
}

// IsDir reports whether the inode describes a directory.
func (n *INode) IsDir() bool {
	return n.Kind == KindDirectory
}

// DirEntry is one row in a directory's child listing.
type DirEntry struct {
	Name string   `json:"name"`
	Ino  int64    `json:"ino"`
	Kind FileKind `json:"kind"`
}

// InodeUpdate is a partial metadata update; nil fields are untouched.
type InodeUpdate struct {
	Perm          *fs.FileMode
	UID           *int
	GID           *int
	ModifiedAt    *time.Time
	AccessedAt    *time.Time
	SymlinkTarget *string
}

// Provider is the pluggable contract for durable inode and byte storage.
// The VFS owns path resolution and caching; a provider is the sole
// source of truth for inode metadata, file contents and directory
// entries. Inode numbers are assigned monotonically and never reused
// while referenced.
//
// Calls may suspend on I/O; every method honors context cancellation.
type Provider interface {
	// Root returns the inode number of the provider's root directory.
	Root() int64

	// Stat returns the inode's metadata.
	Stat(ctx context.Context, ino int64) (*INode, error)

	// ReadFile returns the inode's byte contents.
	ReadFile(ctx context.Context, ino int64) ([]byte, error)

	// WriteFile replaces the inode's byte contents.
	WriteFile(ctx context.Context, ino int64, data []byte) error

	// CreateInode allocates a new, unlinked inode of the given kind.
	CreateInode(ctx context.Context, kind FileKind, perm fs.FileMode) (*INode, error)

	// DeleteInode destroys an inode. Deleting a directory that still has
	// children fails with ErrNotEmpty.
	DeleteInode(ctx context.Context, ino int64) error

	// UpdateInode applies a partial metadata update and returns the
	// resulting inode.
	UpdateInode(ctx context.Context, ino int64, update InodeUpdate) (*INode, error)

	// ReadDir lists a directory inode's children.
	ReadDir(ctx context.Context, ino int64) ([]DirEntry, error)

	// Exists reports whether the inode number is live.
	Exists(ctx context.Context, ino int64) bool

	// Link adds a directory entry name -> child under dir.
	Link(ctx context.Context, dir int64, name string, child int64) error

	// Unlink removes the directory entry name from dir.
	Unlink(ctx context.Context, dir int64, name string) error
}
