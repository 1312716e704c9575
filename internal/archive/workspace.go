// Package archive manages the life of a zip archive used as a virtual
// filesystem: it is unpacked into a scratch directory for the session and
// packed back over the original when the session ends.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"zipsh/internal/logging"
	"zipsh/internal/vfs"
)

var (
	logger = logging.GetLogger().WithPrefix("archive")

	// ErrInvalidArchive indicates the source is missing or not a zip archive
	ErrInvalidArchive = errors.New("invalid VFS archive")
)

// Workspace is an archive unpacked into a scratch directory together with
// the index built from it. It must be released with Close or Discard.
type Workspace struct {
	archivePath string
	scratch     *vfs.Scratch
	index       *vfs.Index
	released    bool
	mu          sync.Mutex
}

// Open validates the archive at archivePath, extracts it into a fresh
// scratch directory and indexes the result.
func Open(archivePath string) (*Workspace, error) {
	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive path: %w", err)
	}
	if !IsZip(absPath) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArchive, archivePath)
	}

	scratchDir, err := os.MkdirTemp("", "zipsh-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	logger.Debug("Extracting %s into %s", absPath, scratchDir)

	if err := Extract(absPath, scratchDir); err != nil {
		os.RemoveAll(scratchDir)
		return nil, err
	}

	scratch := vfs.NewScratch(scratchDir)
	index, err := scratch.BuildIndex()
	if err != nil {
		os.RemoveAll(scratchDir)
		return nil, err
	}

	logger.Info("Opened %s (%d entries)", absPath, index.Len())
	return &Workspace{
		archivePath: absPath,
		scratch:     scratch,
		index:       index,
	}, nil
}

// ArchivePath returns the absolute path of the backing archive.
func (w *Workspace) ArchivePath() string {
	return w.archivePath
}

// Scratch returns the file store over the scratch directory.
func (w *Workspace) Scratch() *vfs.Scratch {
	return w.scratch
}

// Index returns the most recently built index.
func (w *Workspace) Index() *vfs.Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Refresh rebuilds the index from the scratch directory.
func (w *Workspace) Refresh() (*vfs.Index, error) {
	idx, err := w.scratch.BuildIndex()
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.index = idx
	w.mu.Unlock()
	return idx, nil
}

// Close packs the scratch directory into a new archive, atomically replaces
// the original with it and deletes the scratch directory. Calling Close on
// a released workspace does nothing. If packing fails the scratch directory
// is left in place so no changes are lost.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.released {
		return nil
	}

	if err := w.repack(); err != nil {
		logger.Error("Repack failed, scratch area kept at %s: %v", w.scratch.Root(), err)
		return err
	}
	if err := os.RemoveAll(w.scratch.Root()); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}

	w.released = true
	logger.Info("Saved %s", w.archivePath)
	return nil
}

// Discard deletes the scratch directory without touching the archive.
func (w *Workspace) Discard() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.released {
		return nil
	}
	if err := os.RemoveAll(w.scratch.Root()); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	w.released = true
	logger.Debug("Discarded scratch area for %s", w.archivePath)
	return nil
}

func (w *Workspace) repack() error {
	tmp, err := os.CreateTemp(filepath.Dir(w.archivePath), ".zipsh-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()

	if err := Pack(w.scratch.Root(), tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary archive: %w", err)
	}

	if info, err := os.Stat(w.archivePath); err == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			logger.Warn("Failed to copy archive permissions: %v", err)
		}
	}

	if err := os.Rename(tmpPath, w.archivePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace archive: %w", err)
	}
	return nil
}
