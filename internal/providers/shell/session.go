package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentShell/internal/logging"
	"github.com/GriffinCanCode/AgentShell/internal/shared/id"
)

// InterruptToken is the command value that requests an interrupt signal
// instead of being written to the shell's stdin.
const InterruptToken = "ctrl+c"

// Session is one long-lived shell process plus the protocol state needed
// to exchange commands and responses with it across discrete calls.
//
// Commands are framed with a per-session sentinel: each command line is
// written as `<command>; echo '<sentinel>'` and the output stream is
// polled until the sentinel shows up. The framing is heuristic: a command
// whose own output contains the sentinel gets truncated at the first
// occurrence. Split reads mid-sentinel are not guarded against either;
// both are accepted limitations of the protocol.
type Session struct {
	ID id.SessionID

	cfg      Config
	backend  *Backend
	sentinel string
	logger   *logging.Logger

	// runMu serializes command execution; only one command is in flight
	runMu sync.Mutex

	// mu guards state and startedAt, held briefly so observers never
	// wait on a running command
	mu        sync.Mutex
	state     State
	startedAt time.Time
}

// NewSession creates a session in the NotStarted state
func NewSession(cfg Config, logger *logging.Logger) *Session {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Session{
		ID:       id.NewSessionID(),
		cfg:      cfg,
		backend:  NewBackend(cfg.Path, cfg.BufferSize),
		sentinel: fmt.Sprintf("<<exit_%s>>", uuid.NewString()),
		logger:   logger,
		state:    StateNotStarted,
	}
}

// Start spawns the shell; calling it on a running session is a no-op
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return nil
	}

	if err := s.backend.Start(); err != nil {
		return err
	}

	s.state = StateRunning
	s.startedAt = time.Now()
	s.logger.Info("shell session started",
		zap.String("session_id", s.ID.String()),
		zap.String("shell", s.cfg.Path),
	)
	return nil
}

// Stop terminates the shell process. Already-exited and never-started
// sessions are left alone; neither is an error.
func (s *Session) Stop() {
	if s.State() == StateNotStarted {
		return
	}
	if err := s.backend.Terminate(); err != nil {
		s.logger.Warn("failed to terminate shell",
			zap.String("session_id", s.ID.String()),
			zap.Error(err),
		)
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Exit may have been detected between commands
	if s.state == StateRunning && s.backend.Exited() {
		s.state = StateExited
	}
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Info returns the public representation of this session
func (s *Session) Info() SessionInfo {
	state := s.State()

	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:        s.ID.String(),
		Shell:     s.cfg.Path,
		State:     state,
		StartedAt: s.startedAt,
	}
}

// Run executes one command and waits for its output to complete.
//
// An empty command is a poll: nothing is written, whatever has
// accumulated is returned. The InterruptToken signals the process group
// instead of writing to stdin. Concurrent callers are serialized; only
// one command is ever in flight per session.
func (s *Session) Run(ctx context.Context, command string) (*CommandResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	switch s.State() {
	case StateNotStarted:
		if err := s.Start(); err != nil {
			return nil, err
		}
	case StateTimedOut:
		return nil, &TimeoutError{After: s.cfg.Timeout}
	case StateExited:
		return nil, &ExitError{Code: s.backend.ExitCode()}
	}

	switch {
	case command == "":
		return s.extract(), nil
	case isInterrupt(command):
		s.logger.Info("interrupting shell", zap.String("session_id", s.ID.String()))
		if err := s.backend.Interrupt(); err != nil {
			return nil, err
		}
		return s.extract(), nil
	}

	framed := command + "; echo '" + s.sentinel + "'\n"
	if err := s.backend.Write([]byte(framed)); err != nil {
		return nil, err
	}

	return s.await(ctx)
}

// await polls the output buffer until the sentinel arrives, the process
// exits, or the timeout elapses. The timeout cancels the wait only; the
// command keeps running in the background.
func (s *Session) await(ctx context.Context) (*CommandResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
				s.setState(StateTimedOut)
				s.logger.Warn("command timed out",
					zap.String("session_id", s.ID.String()),
					zap.Duration("timeout", s.cfg.Timeout),
				)
				return nil, &TimeoutError{After: s.cfg.Timeout}
			}
			return nil, waitCtx.Err()

		case <-s.backend.Done():
			// The shell died mid-command. If it managed to echo the
			// sentinel first, the result is still usable.
			if bytes.Contains(s.backend.Peek(), []byte(s.sentinel)) {
				return s.extract(), nil
			}
			s.setState(StateExited)
			return nil, &ExitError{Code: s.backend.ExitCode()}

		case <-ticker.C:
			if bytes.Contains(s.backend.Peek(), []byte(s.sentinel)) {
				return s.extract(), nil
			}
		}
	}
}

// extract is the shared drain step: both buffers are drained, stdout is
// truncated at the sentinel if one is pending, and at most one trailing
// newline is stripped from each stream. Both buffers end up empty so
// stale bytes never leak into the next command's result.
func (s *Session) extract() *CommandResult {
	out := s.backend.DrainOutput()
	errOut := s.backend.DrainError()

	if idx := bytes.Index(out, []byte(s.sentinel)); idx >= 0 {
		out = out[:idx]
	}

	return &CommandResult{
		Output: trimTrailingNewline(string(out)),
		Error:  trimTrailingNewline(string(errOut)),
	}
}

func isInterrupt(command string) bool {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case InterruptToken, "ctrl-c", "^c":
		return true
	}
	return false
}

// trimTrailingNewline strips exactly one trailing newline if present
func trimTrailingNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
