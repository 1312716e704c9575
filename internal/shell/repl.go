package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"zipsh/internal/state"
)

// Interact reads command lines from in until a command ends the session,
// the input is exhausted or ctx is cancelled. End of input and
// cancellation print a farewell and record an exit entry, exactly like the
// exit command. Each line is executed to completion before the next read.
func (e *Engine) Interact(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
				select {
				case lines <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				errc <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(e.out, e.prompt(e.session.Cwd))

		select {
		case <-ctx.Done():
			logger.Debug("Input interrupted: %v", ctx.Err())
			e.farewell()
			return nil
		case line, ok := <-lines:
			if !ok {
				e.farewell()
				if err := <-errc; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			// A line can be ready at the same moment as the interrupt.
			if ctx.Err() != nil {
				logger.Debug("Dropping %q after interrupt", line)
				e.farewell()
				return nil
			}
			if e.Execute(line) {
				return nil
			}
		}
	}
}

func (e *Engine) farewell() {
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, "Exiting shell.")
	e.record(state.ExitAction)
}
