package fs

import (
	"context"
	"os"

	"zipsh/internal/logging"
	"zipsh/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir is a directory of the index, identified by its virtual path
// without trailing separator.
type Dir struct {
	fs   *FS
	path string
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path)
	a.Mode = os.ModeDir | 0555
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := vfs.Normalize(d.path, name)
	dirLogger.Debug("Looking up %q in directory %q", name, d.path)

	idx := d.fs.index()
	switch {
	case idx.IsDir(childPath):
		return &Dir{fs: d.fs, path: childPath}, nil
	case idx.IsFile(childPath):
		return &File{fs: d.fs, path: childPath}, nil
	}

	dirLogger.Debug("Path not found: %q", childPath)
	return nil, ToFuseError(vfs.NewError(vfs.OpStat, childPath, vfs.ErrNotFound))
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	children := d.fs.index().Children(d.path)

	entries := make([]fuse.Dirent, 0, len(children)+2)
	entries = append(entries, fuse.Dirent{Name: ".", Type: fuse.DT_Dir})
	entries = append(entries, fuse.Dirent{Name: "..", Type: fuse.DT_Dir})
	for _, child := range children {
		entryType := fuse.DT_File
		if child.IsDir {
			entryType = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{Name: child.Name, Type: entryType})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path, len(children))
	return entries, nil
}
