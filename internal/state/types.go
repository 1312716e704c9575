// Package state records what a shell session did.
package state

import "time"

// TimestampFormat is the ISO-8601 layout used for journal timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000000"

// ExitAction is the text recorded when a session ends.
const ExitAction = "exit"

// Action is one executed command line as stored in the journal.
type Action struct {
	Timestamp time.Time
	// Raw command line, or ExitAction when the session ended
	Text string
}

// Row renders the action as a journal row.
func (a Action) Row() []string {
	return []string{a.Timestamp.Format(TimestampFormat), a.Text}
}

// Header is the journal column header, written once per file.
var Header = []string{"timestamp", "action"}
