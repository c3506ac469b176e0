package shell

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotStarted reports an operation on a session that was never started.
var ErrNotStarted = errors.New("session has not started")

// ErrNoCommand reports an empty command with no existing session.
var ErrNoCommand = errors.New("no command provided")

// SpawnError reports that the shell process could not be created.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn shell: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports that the shell process terminated on its own.
// The session must be restarted before it accepts further commands.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("shell has exited with returncode %d", e.Code)
}

// TimeoutError reports that a command did not produce its sentinel within
// the configured timeout. The session is marked timed out and rejects
// further commands until restarted; the command itself may still be running.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out: shell has not returned in %s and must be restarted", e.After)
}
