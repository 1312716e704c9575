package vfs

import (
	"path"
	"strings"
)

// Root is the virtual path of the archive root.
const Root = "/"

// Separator separates virtual path segments regardless of host OS.
const Separator = "/"

// Normalize resolves raw against the current directory cwd and returns the
// canonical absolute virtual path. Relative tokens are joined onto cwd;
// "." and ".." segments and repeated separators are collapsed lexically,
// and ".." at the root stays at the root. The result never carries a
// trailing separator except for the root itself.
func Normalize(cwd, raw string) string {
	p := raw
	if !strings.HasPrefix(p, Separator) {
		if cwd == "" {
			cwd = Root
		}
		p = cwd + Separator + p
	}
	return path.Clean(p)
}

// DirForm returns p with exactly one trailing separator, the form used for
// directory entries in the index.
func DirForm(p string) string {
	if strings.HasSuffix(p, Separator) {
		return p
	}
	return p + Separator
}

// TrimDir strips the trailing separator of a directory path. The root
// stays "/".
func TrimDir(p string) string {
	trimmed := strings.TrimRight(p, Separator)
	if trimmed == "" {
		return Root
	}
	return trimmed
}

// Parent returns the directory containing p. The parent of the root is the
// root.
func Parent(p string) string {
	return path.Dir(TrimDir(p))
}

// Base returns the last segment of p.
func Base(p string) string {
	return path.Base(TrimDir(p))
}

// IsRoot reports whether p names the archive root.
func IsRoot(p string) bool {
	return TrimDir(p) == Root
}
