package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/zip"
)

// Extract unpacks every entry of the zip at src into destDir. Entry names
// are cleaned first, so "../a" and "/a" both land at destDir/a.
func Extract(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer r.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	for _, file := range r.File {
		name := entryPath(file.Name)
		if name == "" {
			logger.Debug("Skipping entry %q with no usable name", file.Name)
			continue
		}
		destPath := filepath.Join(absDest, filepath.FromSlash(name))

		rel, err := filepath.Rel(absDest, destPath)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: entry %s escapes destination", ErrInvalidArchive, file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", file.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory for %s: %w", file.Name, err)
		}
		if err := extractFile(file, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	logger.Debug("Extracted %d entries from %s", len(r.File), src)
	return nil
}

// entryPath drops empty, "." and ".." segments from a zip entry name and
// returns the remaining slash-separated relative path.
func entryPath(name string) string {
	var parts []string
	for _, part := range strings.Split(name, "/") {
		switch part {
		case "", ".", "..":
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "/")
}

func extractFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|0200)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, rc); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// Pack writes the contents of srcDir as a zip archive to w. Directories get
// their own entries so empty ones survive a round trip. Entries are written
// in lexicographic order of their archive names.
func Pack(srcDir string, w io.Writer) error {
	type item struct {
		name string
		path string
		dir  bool
	}

	var (
		mu    sync.Mutex
		items []item
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		it := item{name: filepath.ToSlash(rel), path: path, dir: d.IsDir()}
		if it.dir {
			it.name += "/"
		}

		mu.Lock()
		items = append(items, it)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", srcDir, err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].name < items[j].name })

	zw := zip.NewWriter(w)
	for _, it := range items {
		info, err := os.Lstat(it.path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", it.name, err)
		}
		if !it.dir && !info.Mode().IsRegular() {
			logger.Warn("Skipping non-regular file %s", it.name)
			continue
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("failed to create header for %s: %w", it.name, err)
		}
		header.Name = it.name
		if it.dir {
			header.Method = zip.Store
		} else {
			header.Method = zip.Deflate
		}

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", it.name, err)
		}
		if it.dir {
			continue
		}
		if err := copyInto(entry, it.path); err != nil {
			return fmt.Errorf("failed to write %s: %w", it.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	logger.Debug("Packed %d entries from %s", len(items), srcDir)
	return nil
}

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// IsZip reports whether path is an existing regular file that parses as a
// zip archive.
func IsZip(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	r.Close()
	return true
}
