// internal/fs/interfaces.go

package fs

import (
	"bazil.org/fuse/fs"
)

// Node represents a filesystem node (file or directory)
type Node interface {
	fs.Node
}

// Directory represents a directory in the mounted view
type Directory interface {
	Node
	fs.NodeStringLookuper
	fs.HandleReadDirAller
}

// FileInterface represents a file in the mounted view
type FileInterface interface {
	Node
	fs.NodeOpener
}

// FileHandleInterface represents an open file handle
type FileHandleInterface interface {
	fs.Handle
	fs.HandleReader
	fs.HandleReleaser
}

var (
	_ Directory           = (*Dir)(nil)
	_ FileInterface       = (*File)(nil)
	_ FileHandleInterface = (*FileHandle)(nil)
)
