// Package shell interprets ls, cd, cat, echo and exit against a virtual
// filesystem built from a zip archive.
package shell

import (
	"zipsh/internal/vfs"
)

// Session is the state threaded from one command to the next.
type Session struct {
	// Cwd is the current directory, always without a trailing separator
	// except for the root.
	Cwd string
}

// NewSession returns a session positioned at the root.
func NewSession() Session {
	return Session{Cwd: vfs.Root}
}

// FileStore reads and writes the real files behind virtual paths.
type FileStore interface {
	Exists(vpath string) bool
	ReadFile(vpath string) ([]byte, error)
	WriteFile(vpath string, data []byte) error
}

// Recorder receives one entry per executed command.
type Recorder interface {
	Record(text string) error
}

// Env is what a handler may consult besides the session.
type Env struct {
	Index *vfs.Index
	Files FileStore
}

// Result is the outcome of one handler call.
type Result struct {
	Session Session
	// Output holds console messages, one per line
	Output []string
	// Exit asks the caller to end the session
	Exit bool
	// Mutated reports that the scratch area changed on disk
	Mutated bool
}

// Handler executes one command. Handlers never fail: problems are reported
// through Output and the session is returned unchanged.
type Handler func(env Env, s Session, args []string) Result

func (s Session) say(lines ...string) Result {
	return Result{Session: s, Output: lines}
}
