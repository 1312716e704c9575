package vfs

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		cwd      string
		input    string
		expected string
	}{
		{
			name:     "relative file at root",
			cwd:      "/",
			input:    "file1.txt",
			expected: "/file1.txt",
		},
		{
			name:     "relative nested path",
			cwd:      "/home",
			input:    "user/notes.txt",
			expected: "/home/user/notes.txt",
		},
		{
			name:     "absolute path ignores cwd",
			cwd:      "/home/user",
			input:    "/etc/motd",
			expected: "/etc/motd",
		},
		{
			name:     "dot segments are dropped",
			cwd:      "/home",
			input:    "./user/./x",
			expected: "/home/user/x",
		},
		{
			name:     "double dot pops one segment",
			cwd:      "/home/user",
			input:    "..",
			expected: "/home",
		},
		{
			name:     "double dot at root stays at root",
			cwd:      "/",
			input:    "../../..",
			expected: "/",
		},
		{
			name:     "repeated separators collapse",
			cwd:      "/",
			input:    "//home///user//",
			expected: "/home/user",
		},
		{
			name:     "empty cwd is treated as root",
			cwd:      "",
			input:    "a/b",
			expected: "/a/b",
		},
		{
			name:     "empty token resolves to cwd",
			cwd:      "/home/user",
			input:    "",
			expected: "/home/user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.cwd, tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.cwd, tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"a/../b", "../..", "/x/./y/", "home//user/..", ".", ""}
	cwds := []string{"/", "/home", "/home/user/"}

	for _, cwd := range cwds {
		for _, in := range inputs {
			once := Normalize(cwd, in)
			twice := Normalize(cwd, once)
			if once != twice {
				t.Errorf("not idempotent for cwd=%q input=%q: %q then %q", cwd, in, once, twice)
			}
		}
	}
}

func TestDirHelpers(t *testing.T) {
	if got := DirForm("/home"); got != "/home/" {
		t.Errorf("DirForm(/home) = %q", got)
	}
	if got := DirForm("/"); got != "/" {
		t.Errorf("DirForm(/) = %q", got)
	}
	if got := TrimDir("/home/user/"); got != "/home/user" {
		t.Errorf("TrimDir = %q", got)
	}
	if got := TrimDir("/"); got != "/" {
		t.Errorf("TrimDir(/) = %q", got)
	}
	if got := Parent("/home/user"); got != "/home" {
		t.Errorf("Parent = %q", got)
	}
	if got := Parent("/"); got != "/" {
		t.Errorf("Parent(/) = %q", got)
	}
	if got := Base("/home/user/"); got != "user" {
		t.Errorf("Base = %q", got)
	}
	if !IsRoot("/") || IsRoot("/home") {
		t.Error("IsRoot misreports")
	}
}
