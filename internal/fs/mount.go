// Package fs exposes a zipsh virtual filesystem as a read-only FUSE mount.
package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"zipsh/internal/logging"
	"zipsh/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	mountLogger = logging.GetLogger().WithPrefix("fuse")
)

// Source supplies the index and the scratch files behind it.
type Source interface {
	Index() *vfs.Index
	Scratch() *vfs.Scratch
}

// FS serves a Source through FUSE. Nodes resolve through the index, file
// contents come from the scratch area.
type FS struct {
	src Source
	uid uint32 // User ID reported for every node
	gid uint32 // Group ID reported for every node
}

// NewFS creates a read-only view over src. PUID and PGID override the
// reported owner.
func NewFS(src Source) *FS {
	uid := safeIntToUint32(os.Getuid())
	gid := safeIntToUint32(os.Getgid())

	if puidStr := os.Getenv("PUID"); puidStr != "" {
		if puid, err := strconv.ParseUint(puidStr, 10, 32); err == nil {
			uid = uint32(puid)
			mountLogger.Debug("Using PUID from environment: %d", uid)
		}
	}
	if pgidStr := os.Getenv("PGID"); pgidStr != "" {
		if pgid, err := strconv.ParseUint(pgidStr, 10, 32); err == nil {
			gid = uint32(pgid)
			mountLogger.Debug("Using PGID from environment: %d", gid)
		}
	}

	return &FS{src: src, uid: uid, gid: gid}
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{fs: f, path: vfs.Root}, nil
}

func (f *FS) index() *vfs.Index {
	return f.src.Index()
}

// Serve mounts the view at mountPoint and serves requests until ctx is
// cancelled or the kernel unmounts it.
func (f *FS) Serve(ctx context.Context, mountPoint string) error {
	mountLogger.Info("Mounting at %s", mountPoint)

	c, err := fuse.Mount(mountPoint,
		fuse.FSName("zipsh"),
		fuse.Subtype("zipsh"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer c.Close()

	served := make(chan error, 1)
	go func() {
		served <- fusefs.Serve(c, f)
	}()

	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("FUSE server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		mountLogger.Info("Unmounting %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			return fmt.Errorf("unmount failed: %w", err)
		}
		return <-served
	}
}
