package vfs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"zipsh/internal/logging"

	"github.com/charlievieth/fastwalk"
)

var (
	indexLogger = logging.GetLogger().WithPrefix("index")
)

// Index is the flat, ordered set of virtual paths derived from a scratch
// area. Directories carry a trailing separator, files do not. Hierarchy is
// never stored; it is recovered by prefix matching.
type Index struct {
	paths []string
	set   map[string]struct{}
}

// Entry is a direct child of a directory as reported by Children.
type Entry struct {
	Name  string
	IsDir bool
}

// String renders the entry the way ls prints it: directories keep a
// trailing separator.
func (e Entry) String() string {
	if e.IsDir {
		return e.Name + Separator
	}
	return e.Name
}

// NewIndex builds an index from an explicit list of virtual paths.
func NewIndex(paths ...string) *Index {
	idx := &Index{set: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if _, dup := idx.set[p]; dup {
			continue
		}
		idx.set[p] = struct{}{}
		idx.paths = append(idx.paths, p)
	}
	sort.Strings(idx.paths)
	return idx
}

// Build walks root and returns the index of everything beneath it.
func Build(root string) (*Index, error) {
	indexLogger.Debug("Building index from %s", root)

	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		vpath := Separator + filepath.ToSlash(rel)
		if d.IsDir() {
			vpath += Separator
		}

		mu.Lock()
		paths = append(paths, vpath)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, NewError(OpIndex, root, fmt.Errorf("walk scratch area: %w", err))
	}

	idx := NewIndex(paths...)
	indexLogger.Debug("Indexed %d entries", idx.Len())
	return idx, nil
}

// Len returns the number of indexed paths.
func (idx *Index) Len() int {
	return len(idx.paths)
}

// Paths returns a copy of the indexed paths in lexicographic order.
func (idx *Index) Paths() []string {
	out := make([]string, len(idx.paths))
	copy(out, idx.paths)
	return out
}

// Exists reports whether p is indexed exactly as given.
func (idx *Index) Exists(p string) bool {
	_, ok := idx.set[p]
	return ok
}

// IsDir reports whether p, in directory form, is an indexed directory.
func (idx *Index) IsDir(p string) bool {
	return idx.Exists(DirForm(p))
}

// IsFile reports whether p is an indexed file.
func (idx *Index) IsFile(p string) bool {
	return !strings.HasSuffix(p, Separator) && idx.Exists(p)
}

// HasPrefix reports whether any indexed path starts with prefix.
func (idx *Index) HasPrefix(prefix string) bool {
	i := sort.SearchStrings(idx.paths, prefix)
	return i < len(idx.paths) && strings.HasPrefix(idx.paths[i], prefix)
}

// Children returns the direct children of dir, deduplicated and sorted by
// their rendered form. dir is coerced to directory form first.
func (idx *Index) Children(dir string) []Entry {
	prefix := DirForm(dir)
	seen := make(map[string]bool)
	var entries []Entry

	for i := sort.SearchStrings(idx.paths, prefix); i < len(idx.paths); i++ {
		p := idx.paths[i]
		if !strings.HasPrefix(p, prefix) {
			break
		}
		if p == prefix {
			continue
		}

		rel := strings.TrimLeft(p[len(prefix):], Separator)
		first, _, _ := strings.Cut(rel, Separator)
		if first == "" || seen[first] {
			continue
		}
		seen[first] = true
		entries = append(entries, Entry{
			Name:  first,
			IsDir: idx.Exists(prefix + first + Separator),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].String() < entries[j].String()
	})
	return entries
}
