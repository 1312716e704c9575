package fs

import (
	"errors"
	"os"
	"syscall"

	"zipsh/internal/logging"
	"zipsh/internal/vfs"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")
)

// ToFuseError converts an error to the errno FUSE expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, vfs.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrIsDirectory):
		return syscall.EISDIR
	case errors.Is(err, vfs.ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, vfs.ErrReadOnly):
		return syscall.EROFS
	case errors.Is(err, vfs.ErrEscapesRoot):
		return syscall.EINVAL
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}
