package state

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"zipsh/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("journal")
)

// Journal is the append-only action log of a session. Every record is
// kept in memory and appended to a CSV file on disk.
type Journal struct {
	path    string
	records []Action
	now     func() time.Time
	mu      sync.Mutex
}

// NewJournal creates a journal writing to logPath. A relative path is
// resolved against the working directory, the parent directory is created
// if needed and the file is opened once to verify it is writable.
func NewJournal(logPath string) (*Journal, error) {
	logger.Debug("Creating journal with path: %s", logPath)

	absPath, err := filepath.Abs(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log path %s: %w", logPath, err)
	}

	logDir := filepath.Dir(absPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", absPath, err)
	}
	f.Close()

	logger.Debug("Journal ready at %s", absPath)
	return &Journal{
		path: absPath,
		now:  time.Now,
	}, nil
}

// Path returns the absolute path of the journal file.
func (j *Journal) Path() string {
	return j.path
}

// Record appends an action stamped with the current time.
func (j *Journal) Record(text string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	action := Action{Timestamp: j.now(), Text: text}
	j.records = append(j.records, action)

	if err := j.append(action); err != nil {
		logger.Error("Failed to write journal entry: %v", err)
		return err
	}
	logger.Trace("Recorded action %q", text)
	return nil
}

// Records returns the actions recorded during this session, in order.
func (j *Journal) Records() []Action {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Action, len(j.records))
	copy(out, j.records)
	return out
}

func (j *Journal) append(action Action) error {
	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}
	if err := w.Write(action.Row()); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	return nil
}
