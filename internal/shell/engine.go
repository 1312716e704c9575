package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"zipsh/internal/logging"
	"zipsh/internal/state"
	"zipsh/internal/vfs"
)

var (
	logger = logging.GetLogger().WithPrefix("shell")
)

// Config wires an Engine to its collaborators.
type Config struct {
	Index *vfs.Index
	Files FileStore
	// Reindex rebuilds the index after a command changed the scratch area.
	// When nil the index is never refreshed.
	Reindex func() (*vfs.Index, error)
	Journal Recorder
	Output  io.Writer
	// Prompt renders the interactive prompt; defaults to Prompt.
	Prompt func(cwd string) string
}

// Engine executes command lines one at a time against a session.
type Engine struct {
	session  Session
	index    *vfs.Index
	files    FileStore
	reindex  func() (*vfs.Index, error)
	journal  Recorder
	out      io.Writer
	prompt   func(cwd string) string
	handlers map[string]Handler
}

// NewEngine creates an engine positioned at the root directory.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		session:  NewSession(),
		index:    cfg.Index,
		files:    cfg.Files,
		reindex:  cfg.Reindex,
		journal:  cfg.Journal,
		out:      cfg.Output,
		prompt:   cfg.Prompt,
		handlers: Builtins(),
	}
	if e.index == nil {
		e.index = vfs.NewIndex()
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.prompt == nil {
		e.prompt = Prompt
	}
	return e
}

// Session returns the current session state.
func (e *Engine) Session() Session {
	return e.session
}

// Index returns the index commands currently resolve against.
func (e *Engine) Index() *vfs.Index {
	return e.index
}

// Execute runs one command line and reports whether the session should
// end. Blank lines are ignored and not recorded.
func (e *Engine) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	name, args := fields[0], fields[1:]
	handler, ok := e.handlers[name]
	if !ok {
		handler = notFound(name)
	}

	logger.Debug("Executing %q in %s", line, e.session.Cwd)
	res := handler(Env{Index: e.index, Files: e.files}, e.session, args)
	e.session = res.Session

	for _, msg := range res.Output {
		fmt.Fprintln(e.out, msg)
	}

	if res.Exit {
		e.record(state.ExitAction)
		return true
	}

	if res.Mutated && e.reindex != nil {
		if idx, err := e.reindex(); err != nil {
			logger.Warn("Failed to refresh index after %q: %v", name, err)
		} else {
			e.index = idx
		}
	}

	e.record(line)
	return false
}

// RunScript executes each line of script in order. It stops early and
// returns true if a line ends the session.
func (e *Engine) RunScript(script string) bool {
	for _, line := range splitLines(script) {
		if e.Execute(line) {
			return true
		}
	}
	return false
}

// RunStartup runs the startup script stored at vpath inside the virtual
// filesystem. A missing script is skipped silently.
func (e *Engine) RunStartup(vpath string) bool {
	script := vfs.Normalize(vfs.Root, vpath)
	data, err := e.files.ReadFile(script)
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) || errors.Is(err, vfs.ErrIsDirectory) {
			logger.Debug("No startup script at %s", script)
		} else {
			logger.Warn("Skipping startup script %s: %v", script, err)
		}
		return false
	}

	logger.Info("Running startup script %s", script)
	return e.RunScript(string(data))
}

func (e *Engine) record(text string) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(text); err != nil {
		logger.Error("Failed to record %q: %v", text, err)
	}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
