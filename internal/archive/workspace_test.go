package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
	body string
}

// writeZip builds an archive from raw entries; names ending in "/" are
// directories.
func writeZip(t *testing.T, entries ...entry) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.body != "" {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "vfs.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func scenarioZip(t *testing.T) string {
	return writeZip(t,
		entry{name: "home/"},
		entry{name: "home/user/"},
		entry{name: "file1.txt", body: "Hello, world!"},
		entry{name: "startup.sh", body: "ls\ncd home\n"},
	)
}

var scenarioPaths = []string{"/file1.txt", "/home/", "/home/user/", "/startup.sh"}

func TestOpenInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.zip"))
	require.ErrorIs(t, err, ErrInvalidArchive)

	notZip := filepath.Join(dir, "plain.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("definitely not a zip"), 0644))
	_, err = Open(notZip)
	require.ErrorIs(t, err, ErrInvalidArchive)

	_, err = Open(dir)
	require.ErrorIs(t, err, ErrInvalidArchive, "directories are not archives")
}

func TestOpenIndexesEntries(t *testing.T) {
	ws, err := Open(scenarioZip(t))
	require.NoError(t, err)
	defer ws.Discard()

	if diff := cmp.Diff(scenarioPaths, ws.Index().Paths()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}

	data, err := ws.Scratch().ReadFile("/file1.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(data))
}

func TestOpenSynthesizesImplicitDirectories(t *testing.T) {
	ws, err := Open(writeZip(t, entry{name: "a/b/c.txt", body: "c"}))
	require.NoError(t, err)
	defer ws.Discard()

	assert.Equal(t, []string{"/a/", "/a/b/", "/a/b/c.txt"}, ws.Index().Paths())
}

func TestRoundTrip(t *testing.T) {
	path := scenarioZip(t)

	ws, err := Open(path)
	require.NoError(t, err)
	scratchDir := ws.Scratch().Root()

	require.NoError(t, ws.Close())
	require.NoError(t, ws.Close(), "second close is a no-op")

	_, err = os.Stat(scratchDir)
	assert.True(t, os.IsNotExist(err), "scratch area should be removed")

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Discard()

	if diff := cmp.Diff(scenarioPaths, reopened.Index().Paths()); diff != "" {
		t.Errorf("round trip changed the path set (-want +got):\n%s", diff)
	}
}

func TestCloseKeepsWritesAndEmptyDirs(t *testing.T) {
	path := scenarioZip(t)

	ws, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ws.Scratch().WriteFile("/home/user/note.txt", []byte("a b\n")))
	require.NoError(t, os.Mkdir(filepath.Join(ws.Scratch().Root(), "empty"), 0755))
	require.NoError(t, ws.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Discard()

	idx := reopened.Index()
	assert.True(t, idx.IsFile("/home/user/note.txt"))
	assert.True(t, idx.IsDir("/empty"))

	data, err := reopened.Scratch().ReadFile("/home/user/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "a b\n", string(data))
}

func TestDiscardLeavesArchiveUntouched(t *testing.T) {
	path := scenarioZip(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ws, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, ws.Scratch().WriteFile("/new.txt", []byte("x")))
	require.NoError(t, ws.Discard())
	require.NoError(t, ws.Close(), "close after discard is a no-op")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRefresh(t *testing.T) {
	ws, err := Open(scenarioZip(t))
	require.NoError(t, err)
	defer ws.Discard()

	require.NoError(t, ws.Scratch().WriteFile("/new.txt", []byte("x")))
	assert.False(t, ws.Index().Exists("/new.txt"))

	idx, err := ws.Refresh()
	require.NoError(t, err)
	assert.True(t, idx.Exists("/new.txt"))
	assert.Same(t, idx, ws.Index())
}

func TestExtractCleansEntryNames(t *testing.T) {
	path := writeZip(t,
		entry{name: "../evil.txt", body: "x"},
		entry{name: "/abs.txt", body: "y"},
		entry{name: "./a/../b.txt", body: "z"},
		entry{name: "../"},
		entry{name: "ok.txt", body: "ok"},
	)

	dest := t.TempDir()
	require.NoError(t, Extract(path, dest))

	for name, want := range map[string]string{
		"evil.txt": "x",
		"abs.txt":  "y",
		"a/b.txt":  "z",
		"ok.txt":   "ok",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}

	_, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenAcceptsEscapingEntries(t *testing.T) {
	ws, err := Open(writeZip(t,
		entry{name: "../evil.txt", body: "x"},
		entry{name: "ok.txt", body: "ok"},
	))
	require.NoError(t, err)
	defer ws.Discard()

	assert.True(t, ws.Index().IsFile("/evil.txt"))
	assert.True(t, ws.Index().IsFile("/ok.txt"))
}

func TestEntryPath(t *testing.T) {
	tests := map[string]string{
		"a/b.txt":       "a/b.txt",
		"../evil.txt":   "evil.txt",
		"/etc/passwd":   "etc/passwd",
		"a//./b/":       "a/b",
		"x/../../y.txt": "x/y.txt",
		"../":           "",
		".":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, entryPath(in), in)
	}
}
