package shell

import (
	"errors"
	"fmt"
	"strings"

	"zipsh/internal/vfs"
)

// Builtins returns the command table.
func Builtins() map[string]Handler {
	return map[string]Handler{
		"ls":   List,
		"cd":   ChangeDir,
		"cat":  Cat,
		"echo": Echo,
		"exit": Exit,
	}
}

// List prints the direct children of the target directory, or of the
// current directory when no argument is given.
func List(env Env, s Session, args []string) Result {
	target := s.Cwd
	if len(args) > 0 {
		target = vfs.Normalize(s.Cwd, args[0])
	}
	target = vfs.DirForm(target)

	if !env.Index.HasPrefix(target) {
		return s.say(fmt.Sprintf("ls: cannot access '%s': No such file or directory", target))
	}

	children := env.Index.Children(target)
	out := make([]string, 0, len(children))
	for _, child := range children {
		out = append(out, child.String())
	}
	return s.say(out...)
}

// ChangeDir moves the session to another directory. Without an argument
// it does nothing.
func ChangeDir(env Env, s Session, args []string) Result {
	if len(args) == 0 {
		return s.say()
	}

	arg := args[0]
	if arg == ".." {
		if !vfs.IsRoot(s.Cwd) {
			s.Cwd = vfs.Parent(s.Cwd)
		}
		return s.say()
	}

	dir := vfs.DirForm(vfs.Normalize(s.Cwd, arg))
	if !env.Index.Exists(dir) && !env.Index.HasPrefix(dir) {
		return s.say("cd: no such file or directory: " + arg)
	}
	s.Cwd = vfs.TrimDir(dir)
	return s.say()
}

// Cat prints the full text of a file.
func Cat(env Env, s Session, args []string) Result {
	if len(args) == 0 {
		return s.say("cat: missing file operand.")
	}

	file := vfs.Normalize(s.Cwd, args[0])
	if !env.Files.Exists(file) {
		return s.say(fmt.Sprintf("cat: %s: No such file or directory", file))
	}

	data, err := env.Files.ReadFile(file)
	if err != nil {
		return s.say(fmt.Sprintf("cat: error reading '%s': %v", file, cause(err)))
	}
	return s.say(strings.TrimSuffix(string(data), "\n"))
}

// Echo writes its words, joined by single spaces and followed by a
// newline, to the file named after ">". The file is overwritten.
func Echo(env Env, s Session, args []string) Result {
	if len(args) < 3 || args[len(args)-2] != ">" {
		return s.say("Usage: echo <text> > <file>")
	}

	file := vfs.Normalize(s.Cwd, args[len(args)-1])
	text := strings.Join(args[:len(args)-2], " ")

	if err := env.Files.WriteFile(file, []byte(text+"\n")); err != nil {
		return s.say(fmt.Sprintf("echo: error writing to %s: %v", file, cause(err)))
	}

	res := s.say("Text written to " + file)
	res.Mutated = true
	return res
}

// Exit ends the session.
func Exit(_ Env, s Session, _ []string) Result {
	return Result{Session: s, Exit: true}
}

func notFound(name string) Handler {
	return func(_ Env, s Session, _ []string) Result {
		return s.say(name + ": command not found")
	}
}

// cause strips the operation/path wrapper of a VFS error, since the shell
// message already names the path.
func cause(err error) error {
	var vfsErr *vfs.Error
	if errors.As(err, &vfsErr) {
		return vfsErr.Err
	}
	return err
}
