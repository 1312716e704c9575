package fs

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"zipsh/internal/vfs"

	"bazil.org/fuse"
)

type testSource struct {
	index   *vfs.Index
	scratch *vfs.Scratch
}

func (s *testSource) Index() *vfs.Index     { return s.index }
func (s *testSource) Scratch() *vfs.Scratch { return s.scratch }

func setupTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	sourceDir := t.TempDir()

	testFiles := map[string]string{
		"file1.txt":           "Hello, world!",
		"home/user/notes.txt": "test file content",
	}
	for name, content := range testFiles {
		fullPath := filepath.Join(sourceDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(sourceDir, "empty"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	scratch := vfs.NewScratch(sourceDir)
	idx, err := scratch.BuildIndex()
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	return NewFS(&testSource{index: idx, scratch: scratch}), sourceDir
}

func TestDirOperations(t *testing.T) {
	vfsys, _ := setupTestFS(t)
	ctx := context.Background()

	t.Run("RootDirectory", func(t *testing.T) {
		root, err := vfsys.Root()
		if err != nil {
			t.Fatalf("Failed to get root: %v", err)
		}

		attr := &fuse.Attr{}
		if err := root.Attr(ctx, attr); err != nil {
			t.Errorf("Failed to get root attributes: %v", err)
		}
		if attr.Mode&os.ModeDir == 0 {
			t.Error("Root should be a directory")
		}
		if attr.Mode&0222 != 0 {
			t.Error("Root should not be writable")
		}

		dir, ok := root.(*Dir)
		if !ok {
			t.Fatal("Root should be a Dir")
		}
		entries, err := dir.ReadDirAll(ctx)
		if err != nil {
			t.Fatalf("Failed to read root directory: %v", err)
		}

		want := map[string]fuse.DirentType{
			".":         fuse.DT_Dir,
			"..":        fuse.DT_Dir,
			"empty":     fuse.DT_Dir,
			"file1.txt": fuse.DT_File,
			"home":      fuse.DT_Dir,
		}
		if len(entries) != len(want) {
			t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(entries), entries)
		}
		for _, entry := range entries {
			typ, ok := want[entry.Name]
			if !ok {
				t.Errorf("Unexpected entry %q", entry.Name)
				continue
			}
			if entry.Type != typ {
				t.Errorf("Entry %q has type %v, want %v", entry.Name, entry.Type, typ)
			}
		}
	})

	t.Run("LookupNested", func(t *testing.T) {
		root, _ := vfsys.Root()
		home, err := root.(*Dir).Lookup(ctx, "home")
		if err != nil {
			t.Fatalf("Failed to lookup home: %v", err)
		}
		user, err := home.(*Dir).Lookup(ctx, "user")
		if err != nil {
			t.Fatalf("Failed to lookup user: %v", err)
		}
		if got := user.(*Dir).path; got != "/home/user" {
			t.Errorf("Expected path /home/user, got %q", got)
		}

		node, err := user.(*Dir).Lookup(ctx, "notes.txt")
		if err != nil {
			t.Fatalf("Failed to lookup notes.txt: %v", err)
		}
		if _, ok := node.(*File); !ok {
			t.Errorf("Expected a File node, got %T", node)
		}
	})

	t.Run("LookupMissing", func(t *testing.T) {
		root, _ := vfsys.Root()
		_, err := root.(*Dir).Lookup(ctx, "nonexistent")
		if err != syscall.ENOENT {
			t.Errorf("Expected ENOENT, got %v", err)
		}
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		root, _ := vfsys.Root()
		node, err := root.(*Dir).Lookup(ctx, "empty")
		if err != nil {
			t.Fatalf("Failed to lookup empty: %v", err)
		}
		entries, err := node.(*Dir).ReadDirAll(ctx)
		if err != nil {
			t.Fatalf("Failed to read directory: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("Expected only . and .., got %+v", entries)
		}
	})
}
