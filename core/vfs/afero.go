package vfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
)

// AferoAdapter exposes an FS through the afero.Fs interface so hosts
// with existing afero-based tooling can operate on the synthetic tree.
// Open files buffer their contents in memory; writes are flushed back on
// Close or Sync.
type AferoAdapter struct {
	fs  *FS
	ctx context.Context
}

var _ afero.Fs = (*AferoAdapter)(nil)

// NewAferoAdapter wraps fs. Operations run under ctx.
func NewAferoAdapter(ctx context.Context, fs *FS) *AferoAdapter {
	return &AferoAdapter{fs: fs, ctx: ctx}
}

// Name implements afero.Fs.
func (a *AferoAdapter) Name() string {
	return "vconsole"
}

// Create implements afero.Fs.
func (a *AferoAdapter) Create(name string) (afero.File, error) {
	return a.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// Open implements afero.Fs.
func (a *AferoAdapter) Open(name string) (afero.File, error) {
	return a.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile implements afero.Fs.
func (a *AferoAdapter) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	name = Resolve(name)

	meta, err := a.fs.Stat(a.ctx, name)
	switch {
	case isNotFound(err) && flag&os.O_CREATE != 0:
		if err := a.fs.WriteFile(a.ctx, name, nil, perm); err != nil {
			return nil, err
		}
		meta, err = a.fs.Stat(a.ctx, name)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case flag&os.O_EXCL != 0:
		return nil, fmt.Errorf("%s: %w", name, ErrExist)
	}

	file := &aferoFile{adapter: a, path: name, meta: meta, flag: flag}
	if !meta.IsDir() && flag&os.O_TRUNC == 0 {
		data, err := a.fs.ReadFile(a.ctx, name)
		if err != nil {
			return nil, err
		}
		file.buf = data
	}
	if flag&os.O_APPEND != 0 {
		file.off = int64(len(file.buf))
	}
	return file, nil
}

// Remove implements afero.Fs.
func (a *AferoAdapter) Remove(name string) error {
	return a.fs.Remove(a.ctx, name)
}

// RemoveAll implements afero.Fs.
func (a *AferoAdapter) RemoveAll(path string) error {
	err := a.fs.RemoveAll(a.ctx, path)
	if isNotFound(err) {
		// afero semantics: removing a missing tree is not an error.
		return nil
	}
	return err
}

// Rename implements afero.Fs.
func (a *AferoAdapter) Rename(oldname, newname string) error {
	return a.fs.Rename(a.ctx, oldname, newname)
}

// Mkdir implements afero.Fs.
func (a *AferoAdapter) Mkdir(name string, perm os.FileMode) error {
	return a.fs.Mkdir(a.ctx, name, perm)
}

// MkdirAll implements afero.Fs.
func (a *AferoAdapter) MkdirAll(path string, perm os.FileMode) error {
	return a.fs.MkdirAll(a.ctx, path, perm)
}

// Stat implements afero.Fs.
func (a *AferoAdapter) Stat(name string) (os.FileInfo, error) {
	meta, err := a.fs.Stat(a.ctx, name)
	if err != nil {
		return nil, err
	}
	return &inodeFileInfo{name: Base(name, ""), meta: meta}, nil
}

// Chmod implements afero.Fs.
func (a *AferoAdapter) Chmod(name string, mode os.FileMode) error {
	return a.fs.Chmod(a.ctx, name, mode)
}

// Chown implements afero.Fs.
func (a *AferoAdapter) Chown(name string, uid, gid int) error {
	return a.fs.Chown(a.ctx, name, uid, gid)
}

// Chtimes implements afero.Fs.
func (a *AferoAdapter) Chtimes(name string, atime, mtime time.Time) error {
	return a.fs.Chtimes(a.ctx, name, atime, mtime)
}

type aferoFile struct {
	adapter *AferoAdapter
	path    string
	meta    *INode
	flag    int

	buf   []byte
	off   int64
	dirty bool
}

var _ afero.File = (*aferoFile)(nil)

func (f *aferoFile) Close() error {
	return f.Sync()
}

func (f *aferoFile) Read(p []byte) (int, error) {
	if f.off >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *aferoFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	return copy(p, f.buf[off:]), nil
}

func (f *aferoFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.off = offset
	case io.SeekCurrent:
		f.off += offset
	case io.SeekEnd:
		f.off = int64(len(f.buf)) + offset
	}
	if f.off < 0 {
		f.off = 0
	}
	return f.off, nil
}

func (f *aferoFile) Write(p []byte) (int, error) {
	if f.flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return 0, ErrPermission
	}
	end := f.off + int64(len(p))
	if end > int64(len(f.buf)) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.off:end], p)
	f.off = end
	f.dirty = true
	return len(p), nil
}

func (f *aferoFile) WriteAt(p []byte, off int64) (int, error) {
	saved := f.off
	f.off = off
	n, err := f.Write(p)
	f.off = saved
	return n, err
}

func (f *aferoFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *aferoFile) Name() string {
	return f.path
}

func (f *aferoFile) Readdir(count int) ([]os.FileInfo, error) {
	entries, err := f.adapter.fs.ReadDir(f.adapter.ctx, f.path)
	if err != nil {
		return nil, err
	}

	var infos []os.FileInfo
	for _, ent := range entries {
		meta, err := f.adapter.fs.Stat(f.adapter.ctx, Join(f.path, ent.Name))
		if err != nil {
			continue
		}
		infos = append(infos, &inodeFileInfo{name: ent.Name, meta: meta})
		if count > 0 && len(infos) == count {
			break
		}
	}
	return infos, nil
}

func (f *aferoFile) Readdirnames(n int) ([]string, error) {
	infos, err := f.Readdir(n)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

func (f *aferoFile) Stat() (os.FileInfo, error) {
	return &inodeFileInfo{name: Base(f.path, ""), meta: f.meta}, nil
}

func (f *aferoFile) Sync() error {
	if !f.dirty {
		return nil
	}
	if err := f.adapter.fs.WriteFile(f.adapter.ctx, f.path, f.buf, f.meta.Perm); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

func (f *aferoFile) Truncate(size int64) error {
	switch {
	case size < int64(len(f.buf)):
		f.buf = f.buf[:size]
	case size > int64(len(f.buf)):
		f.buf = append(f.buf, bytes.Repeat([]byte{0}, int(size)-len(f.buf))...)
	}
	f.dirty = true
	return nil
}

// inodeFileInfo adapts an INode to os.FileInfo.
type inodeFileInfo struct {
	name string
	meta *INode
}

var _ os.FileInfo = (*inodeFileInfo)(nil)

func (i *inodeFileInfo) Name() string { return i.name }
func (i *inodeFileInfo) Size() int64  { return i.meta.Size }

func (i *inodeFileInfo) Mode() os.FileMode {
	mode := i.meta.Perm
	switch i.meta.Kind {
	case KindDirectory:
		mode |= os.ModeDir
	case KindSymlink:
		mode |= os.ModeSymlink
	case KindBlockDevice:
		mode |= os.ModeDevice
	case KindCharDevice:
		mode |= os.ModeDevice | os.ModeCharDevice
	case KindFIFO:
		mode |= os.ModeNamedPipe
	}
	return mode
}

func (i *inodeFileInfo) ModTime() time.Time { return i.meta.ModifiedAt }
func (i *inodeFileInfo) IsDir() bool        { return i.meta.IsDir() }
func (i *inodeFileInfo) Sys() interface{}   { return i.meta }
