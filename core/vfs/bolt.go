package vfs

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	boltInodesBucket   = []byte("inodes")
	boltContentsBucket = []byte("contents")
	boltEntriesBucket  = []byte("entries")
)

// BoltProvider stores inodes, file contents and directory entries in a
// bbolt database, giving the filesystem durability across process
// restarts. Layout: "inodes" maps ino -> JSON metadata, "contents" maps
// ino -> raw bytes, and "entries" holds one nested bucket per directory
// mapping child name -> ino. The inode counter is the inodes bucket
// sequence, so numbers are monotonic and never reused.
type BoltProvider struct {
	db   *bolt.DB
	root int64
	now  TimeSource
}

var _ Provider = (*BoltProvider)(nil)

// OpenBoltProvider opens (creating if needed) a provider at path.
func OpenBoltProvider(path string, now TimeSource) (*BoltProvider, error) {
	if now == nil {
		now = time.Now
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening storage db: %w", err)
	}

	p := &BoltProvider{db: db, now: now}
	if err := db.Update(func(tx *bolt.Tx) error {
		inodes, err := tx.CreateBucketIfNotExists(boltInodesBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(boltContentsBucket); err != nil {
			return err
		}
		entries, err := tx.CreateBucketIfNotExists(boltEntriesBucket)
		if err != nil {
			return err
		}

		// First open: seed the root directory as inode 1.
		if inodes.Get(itob(1)) == nil {
			ts := now()
			root := INode{
				Ino:        1,
				Kind:       KindDirectory,
				Perm:       0755,
				CreatedAt:  ts,
				ModifiedAt: ts,
				AccessedAt: ts,
				LinkCount:  1,
			}
			if _, err := inodes.NextSequence(); err != nil {
				return err
			}
			if err := putInode(inodes, &root); err != nil {
				return err
			}
			if _, err := entries.CreateBucketIfNotExists(itob(1)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	p.root = 1
	return p, nil
}

// Close releases the underlying database.
func (p *BoltProvider) Close() error {
	return p.db.Close()
}

// Root implements Provider.Root.
func (p *BoltProvider) Root() int64 {
	return p.root
}

// Stat implements Provider.Stat.
func (p *BoltProvider) Stat(ctx context.Context, ino int64) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta *INode
	err := p.db.View(func(tx *bolt.Tx) error {
		var err error
		meta, err = getInode(tx.Bucket(boltInodesBucket), ino)
		return err
	})
	return meta, err
}

// ReadFile implements Provider.ReadFile.
func (p *BoltProvider) ReadFile(ctx context.Context, ino int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		meta, err := getInode(tx.Bucket(boltInodesBucket), ino)
		if err != nil {
			return err
		}
		if meta.Kind == KindDirectory {
			return ErrIsDirectory
		}

		raw := tx.Bucket(boltContentsBucket).Get(itob(ino))
		data = make([]byte, len(raw))
		copy(data, raw)
		return nil
	})
	return data, err
}

// WriteFile implements Provider.WriteFile.
func (p *BoltProvider) WriteFile(ctx context.Context, ino int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		meta, err := getInode(inodes, ino)
		if err != nil {
			return err
		}
		if meta.Kind == KindDirectory {
			return ErrIsDirectory
		}

		if err := tx.Bucket(boltContentsBucket).Put(itob(ino), data); err != nil {
			return err
		}
		meta.Size = int64(len(data))
		meta.ModifiedAt = p.now()
		return putInode(inodes, meta)
	})
}

// CreateInode implements Provider.CreateInode.
func (p *BoltProvider) CreateInode(ctx context.Context, kind FileKind, perm fs.FileMode) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta *INode
	err := p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		seq, err := inodes.NextSequence()
		if err != nil {
			return err
		}

		ts := p.now()
		meta = &INode{
			Ino:        int64(seq),
			Kind:       kind,
			Perm:       perm,
			CreatedAt:  ts,
			ModifiedAt: ts,
			AccessedAt: ts,
		}
		if kind == KindDirectory {
			if _, err := tx.Bucket(boltEntriesBucket).CreateBucketIfNotExists(itob(meta.Ino)); err != nil {
				return err
			}
		}
		return putInode(inodes, meta)
	})
	return meta, err
}

// DeleteInode implements Provider.DeleteInode.
func (p *BoltProvider) DeleteInode(ctx context.Context, ino int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		meta, err := getInode(inodes, ino)
		if err != nil {
			return err
		}

		entries := tx.Bucket(boltEntriesBucket)
		if meta.Kind == KindDirectory {
			children := entries.Bucket(itob(ino))
			if children != nil {
				if k, _ := children.Cursor().First(); k != nil {
					return ErrNotEmpty
				}
				if err := entries.DeleteBucket(itob(ino)); err != nil {
					return err
				}
			}
		}

		if err := tx.Bucket(boltContentsBucket).Delete(itob(ino)); err != nil {
			return err
		}
		return inodes.Delete(itob(ino))
	})
}

// UpdateInode implements Provider.UpdateInode.
func (p *BoltProvider) UpdateInode(ctx context.Context, ino int64, update InodeUpdate) (*INode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta *INode
	err := p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		var err error
		meta, err = getInode(inodes, ino)
		if err != nil {
			return err
		}
		applyUpdate(meta, update)
		return putInode(inodes, meta)
	})
	return meta, err
}

// ReadDir implements Provider.ReadDir.
func (p *BoltProvider) ReadDir(ctx context.Context, ino int64) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []DirEntry
	err := p.db.View(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		meta, err := getInode(inodes, ino)
		if err != nil {
			return err
		}
		if meta.Kind != KindDirectory {
			return ErrNotDirectory
		}

		children := tx.Bucket(boltEntriesBucket).Bucket(itob(ino))
		if children == nil {
			return nil
		}
		return children.ForEach(func(name, childKey []byte) error {
			child, err := getInode(inodes, btoi(childKey))
			if err != nil {
				return err
			}
			out = append(out, DirEntry{Name: string(name), Ino: child.Ino, Kind: child.Kind})
			return nil
		})
	})
	return out, err
}

// Exists implements Provider.Exists.
func (p *BoltProvider) Exists(ctx context.Context, ino int64) bool {
	var found bool
	_ = p.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(boltInodesBucket).Get(itob(ino)) != nil
		return nil
	})
	return found
}

// Link implements Provider.Link.
func (p *BoltProvider) Link(ctx context.Context, dir int64, name string, child int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		parent, err := getInode(inodes, dir)
		if err != nil {
			return err
		}
		if parent.Kind != KindDirectory {
			return ErrNotDirectory
		}

		children := tx.Bucket(boltEntriesBucket).Bucket(itob(dir))
		if children == nil {
			return ErrNotDirectory
		}
		if children.Get([]byte(name)) != nil {
			return ErrExist
		}

		childMeta, err := getInode(inodes, child)
		if err != nil {
			return err
		}

		if err := children.Put([]byte(name), itob(child)); err != nil {
			return err
		}
		childMeta.LinkCount++
		if err := putInode(inodes, childMeta); err != nil {
			return err
		}
		parent.ModifiedAt = p.now()
		return putInode(inodes, parent)
	})
}

// Unlink implements Provider.Unlink.
func (p *BoltProvider) Unlink(ctx context.Context, dir int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		inodes := tx.Bucket(boltInodesBucket)
		parent, err := getInode(inodes, dir)
		if err != nil {
			return err
		}
		if parent.Kind != KindDirectory {
			return ErrNotDirectory
		}

		children := tx.Bucket(boltEntriesBucket).Bucket(itob(dir))
		if children == nil || children.Get([]byte(name)) == nil {
			return ErrNotFound
		}

		childIno := btoi(children.Get([]byte(name)))
		if err := children.Delete([]byte(name)); err != nil {
			return err
		}
		if childMeta, err := getInode(inodes, childIno); err == nil && childMeta.LinkCount > 0 {
			childMeta.LinkCount--
			if err := putInode(inodes, childMeta); err != nil {
				return err
			}
		}
		parent.ModifiedAt = p.now()
		return putInode(inodes, parent)
	})
}

func getInode(bucket *bolt.Bucket, ino int64) (*INode, error) {
	raw := bucket.Get(itob(ino))
	if raw == nil {
		return nil, ErrNotFound
	}
	var meta INode
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("corrupt inode %d: %w", ino, err)
	}
	return &meta, nil
}

func putInode(bucket *bolt.Bucket, meta *INode) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return bucket.Put(itob(meta.Ino), raw)
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
