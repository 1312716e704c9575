package fs

import (
	"context"
	"io"
	"os"
	"sync"

	"zipsh/internal/logging"
	"zipsh/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File is a regular file of the index.
type File struct {
	fs   *FS
	path string
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	info, err := f.fs.src.Scratch().Stat(f.path)
	if err != nil {
		fileLogger.Warn("Backing file missing for %q: %v", f.path, err)
		return ToFuseError(err)
	}

	a.Mode = info.Mode().Perm() &^ 0222
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = safeInt64ToUint64((info.Size() + 511) / 512)
	return nil
}

// Open implements the NodeOpener interface. Only read access is allowed.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	if !req.Flags.IsReadOnly() {
		fileLogger.Warn("Attempted write access to read-only file: %q", f.path)
		return nil, ToFuseError(vfs.NewError(vfs.OpOpen, f.path, vfs.ErrReadOnly))
	}

	full, err := f.fs.src.Scratch().RealPath(f.path)
	if err != nil {
		return nil, ToFuseError(err)
	}
	file, err := os.Open(full)
	if err != nil {
		fileLogger.Error("Failed to open file: %v", err)
		return nil, ToFuseError(err)
	}

	resp.Flags |= fuse.OpenKeepCache
	return &FileHandle{file: file, path: f.path}, nil
}

// FileHandle is an open file from the scratch area.
type FileHandle struct {
	file *os.File
	path string // For logging purposes
	mu   sync.Mutex
}

// Read implements the HandleReader interface, reading data from the file.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fileLogger.Trace("Reading %d bytes from file %q at offset %d", req.Size, fh.path, req.Offset)

	buf := make([]byte, req.Size)
	n, err := fh.file.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		fileLogger.Error("Failed to read from file: %v", err)
		return ToFuseError(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Release implements the HandleReleaser interface, closing the file handle.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	fileLogger.Debug("Closing file %q", fh.path)
	return fh.file.Close()
}
