package shell

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testSessionConfig() Config {
	return Config{
		Path:         "/bin/bash",
		Timeout:      2 * time.Second,
		PollInterval: 10 * time.Millisecond,
		BufferSize:   1 << 16,
	}
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s := NewSession(cfg, nil)
	t.Cleanup(s.Stop)
	return s
}

func TestSessionEcho(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	result, err := s.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Output != "hello" {
		t.Errorf("Expected output 'hello', got %q", result.Output)
	}
	if result.Error != "" {
		t.Errorf("Expected empty error stream, got %q", result.Error)
	}
}

func TestSessionStderr(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	result, err := s.Run(context.Background(), "echo a 1>&2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Output != "" {
		t.Errorf("Expected empty output, got %q", result.Output)
	}
	if result.Error != "a" {
		t.Errorf("Expected error stream 'a', got %q", result.Error)
	}
}

func TestSessionBothStreams(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	result, err := s.Run(context.Background(), "echo out; echo err 1>&2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Output != "out" {
		t.Errorf("Expected 'out', got %q", result.Output)
	}
	if result.Error != "err" {
		t.Errorf("Expected 'err', got %q", result.Error)
	}
}

func TestSessionStatePersistsAcrossCommands(t *testing.T) {
	s := newTestSession(t, testSessionConfig())
	ctx := context.Background()

	if _, err := s.Run(ctx, "cd /tmp"); err != nil {
		t.Fatalf("cd failed: %v", err)
	}

	result, err := s.Run(ctx, "pwd")
	if err != nil {
		t.Fatalf("pwd failed: %v", err)
	}
	if result.Output != "/tmp" {
		t.Errorf("Working directory should persist, got %q", result.Output)
	}
}

func TestSessionStartIdempotent(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Second Start should be a no-op, got %v", err)
	}

	if s.State() != StateRunning {
		t.Errorf("Expected Running, got %s", s.State())
	}

	result, err := s.Run(context.Background(), "echo still-alive")
	if err != nil || result.Output != "still-alive" {
		t.Errorf("Session should keep serving commands: %v %v", result, err)
	}
}

func TestSessionLazyStartOnRun(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	if s.State() != StateNotStarted {
		t.Fatalf("Fresh session should be NotStarted, got %s", s.State())
	}

	if _, err := s.Run(context.Background(), "echo hi"); err != nil {
		t.Fatalf("Run on fresh session failed: %v", err)
	}
	if s.State() != StateRunning {
		t.Errorf("Expected Running after Run, got %s", s.State())
	}
}

func TestSessionTimeoutIsSticky(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Timeout = 300 * time.Millisecond
	s := newTestSession(t, cfg)
	ctx := context.Background()

	_, err := s.Run(ctx, "sleep 5")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected *TimeoutError, got %v", err)
	}
	if s.State() != StateTimedOut {
		t.Errorf("Expected TimedOut, got %s", s.State())
	}

	// Further commands are rejected without execution
	start := time.Now()
	_, err = s.Run(ctx, "echo should-not-run")
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected immediate *TimeoutError, got %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Rejection should be immediate, not another poll cycle")
	}

	// Empty poll is rejected too
	if _, err := s.Run(ctx, ""); !errors.As(err, &timeoutErr) {
		t.Errorf("Empty command after timeout should fail, got %v", err)
	}
}

func TestSessionExitDetection(t *testing.T) {
	s := newTestSession(t, testSessionConfig())
	ctx := context.Background()

	_, err := s.Run(ctx, "exit 7")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %v", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("Expected exit code 7, got %d", exitErr.Code)
	}
	if s.State() != StateExited {
		t.Errorf("Expected Exited, got %s", s.State())
	}

	// Subsequent commands fail without writing to the dead process
	if _, err := s.Run(ctx, "echo nope"); !errors.As(err, &exitErr) {
		t.Errorf("Expected *ExitError on dead session, got %v", err)
	}
}

func TestSessionEmptyCommandPolls(t *testing.T) {
	s := newTestSession(t, testSessionConfig())
	ctx := context.Background()

	// Nothing pending: poll returns empty streams
	result, err := s.Run(ctx, "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if result.Output != "" || result.Error != "" {
		t.Errorf("Expected empty poll result, got %+v", result)
	}

	// Late output from a background job is retrievable by polling
	if _, err := s.Run(ctx, "(sleep 0.2; echo late) & true"); err != nil {
		t.Fatalf("Background command failed: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	result, err = s.Run(ctx, "")
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if result.Output != "late" {
		t.Errorf("Expected late output, got %q", result.Output)
	}
}

func TestSessionNoStaleOutputBetweenCommands(t *testing.T) {
	s := newTestSession(t, testSessionConfig())
	ctx := context.Background()

	first, err := s.Run(ctx, "echo first")
	if err != nil || first.Output != "first" {
		t.Fatalf("First command: %v %v", first, err)
	}

	second, err := s.Run(ctx, "echo second")
	if err != nil {
		t.Fatalf("Second command failed: %v", err)
	}
	if second.Output != "second" {
		t.Errorf("Stale bytes leaked into second result: %q", second.Output)
	}
}

func TestSessionContextCancellation(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := s.Run(ctx, "sleep 5")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	// Caller cancellation is not a session timeout
	if s.State() == StateTimedOut {
		t.Error("Cancellation should not mark the session TimedOut")
	}
}

func TestSessionSentinelsAreUnique(t *testing.T) {
	a := NewSession(testSessionConfig(), nil)
	b := NewSession(testSessionConfig(), nil)

	if a.sentinel == b.sentinel {
		t.Error("Sessions must not share sentinels")
	}
	if a.ID == b.ID {
		t.Error("Sessions must not share IDs")
	}
}

func TestSessionMultilineOutput(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	result, err := s.Run(context.Background(), "printf 'a\\nb\\nc\\n'")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Output != "a\nb\nc" {
		t.Errorf("Only one trailing newline should be stripped, got %q", result.Output)
	}
}

func TestSessionInfo(t *testing.T) {
	s := newTestSession(t, testSessionConfig())
	s.Start()

	info := s.Info()
	if info.State != StateRunning {
		t.Errorf("Expected Running, got %s", info.State)
	}
	if info.Shell != "/bin/bash" {
		t.Errorf("Expected /bin/bash, got %s", info.Shell)
	}
	if info.ID == "" {
		t.Error("Info should carry the session ID")
	}
}

func TestIsInterrupt(t *testing.T) {
	for _, token := range []string{"ctrl+c", "CTRL+C", "ctrl-c", "^C", " ctrl+c "} {
		if !isInterrupt(token) {
			t.Errorf("%q should be recognized as interrupt", token)
		}
	}
	for _, cmd := range []string{"", "echo ctrl+c", "ls"} {
		if isInterrupt(cmd) {
			t.Errorf("%q should not be recognized as interrupt", cmd)
		}
	}
}

func TestTrimTrailingNewline(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello\n", "hello"},
		{"hello\n\n", "hello\n"},
		{"hello", "hello"},
		{"", ""},
		{"\n", ""},
	}
	for _, tt := range tests {
		if got := trimTrailingNewline(tt.in); got != tt.want {
			t.Errorf("trimTrailingNewline(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
