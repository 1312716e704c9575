package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"zipsh/internal/logging"
)

var (
	scratchLogger = logging.GetLogger().WithPrefix("scratch")
)

// Scratch gives virtual-path access to the real directory that holds an
// unpacked archive. It is the file-access collaborator used by the shell.
type Scratch struct {
	root string
}

// NewScratch wraps an existing directory.
func NewScratch(root string) *Scratch {
	return &Scratch{root: filepath.Clean(root)}
}

// Root returns the real path of the scratch directory.
func (s *Scratch) Root() string {
	return s.root
}

// RealPath maps a virtual path to its location under the scratch root.
func (s *Scratch) RealPath(vpath string) (string, error) {
	clean := Normalize(Root, vpath)
	rel := strings.TrimPrefix(clean, Separator)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	check, err := filepath.Rel(s.root, full)
	if err != nil || check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", NewError(OpStat, vpath, ErrEscapesRoot)
	}
	scratchLogger.Trace("Mapped %q -> %q", vpath, full)
	return full, nil
}

// Stat returns file info for the real file behind vpath.
func (s *Scratch) Stat(vpath string) (fs.FileInfo, error) {
	full, err := s.RealPath(vpath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, NewError(OpStat, vpath, err)
	}
	return info, nil
}

// Exists reports whether anything exists on disk at vpath.
func (s *Scratch) Exists(vpath string) bool {
	_, err := s.Stat(vpath)
	return err == nil
}

// ReadFile returns the full content of the file at vpath.
func (s *Scratch) ReadFile(vpath string) ([]byte, error) {
	full, err := s.RealPath(vpath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, NewError(OpRead, vpath, err)
	}
	if info.IsDir() {
		return nil, NewError(OpRead, vpath, ErrIsDirectory)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, NewError(OpRead, vpath, err)
	}
	return data, nil
}

// WriteFile replaces the file at vpath with data, creating any missing
// parent directories.
func (s *Scratch) WriteFile(vpath string, data []byte) error {
	full, err := s.RealPath(vpath)
	if err != nil {
		return err
	}
	if full == s.root {
		return NewError(OpWrite, vpath, ErrIsDirectory)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return NewError(OpWrite, vpath, fmt.Errorf("create parent directories: %w", err))
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return NewError(OpWrite, vpath, err)
	}
	scratchLogger.Debug("Wrote %d bytes to %s", len(data), vpath)
	return nil
}

// BuildIndex walks the scratch directory and returns a fresh index.
func (s *Scratch) BuildIndex() (*Index, error) {
	return Build(s.root)
}
