package shell

import (
	"io"
	"os/exec"
	"sync"
	"syscall"
)

// Backend owns one OS-level shell process and its three piped streams.
// Stdout and stderr drain continuously into independent clear-on-read
// buffers so the process never blocks on a full pipe.
type Backend struct {
	path string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	stdout *Buffer
	stderr *Buffer

	mu       sync.Mutex
	started  bool
	exited   bool
	exitCode int
	done     chan struct{}
}

// NewBackend creates a backend for the given shell binary.
// Nothing is spawned until Start is called.
func NewBackend(path string, bufferSize int) *Backend {
	return &Backend{
		path:   path,
		stdout: NewBuffer(bufferSize),
		stderr: NewBuffer(bufferSize),
		done:   make(chan struct{}),
	}
}

// Start spawns the shell process exactly once; calling it again while
// already started is a no-op. The process gets its own process group so
// it can be signaled independently of the host.
func (b *Backend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return nil
	}

	cmd := exec.Command(b.path)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &SpawnError{Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &SpawnError{Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Err: err}
	}

	b.cmd = cmd
	b.stdin = stdin
	b.started = true

	go b.drain(stdout, b.stdout)
	go b.drain(stderr, b.stderr)
	go b.wait()

	return nil
}

// drain copies one pipe into its buffer until EOF
func (b *Backend) drain(r io.Reader, buf *Buffer) {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			return
		}
	}
}

// wait records the exit of the process and signals observers
func (b *Backend) wait() {
	err := b.cmd.Wait()

	b.mu.Lock()
	b.exited = true
	b.exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			b.exitCode = exitErr.ExitCode()
		} else {
			b.exitCode = -1
		}
	}
	b.mu.Unlock()

	close(b.done)
}

// Write appends bytes to the process's input stream. Delivery timing is
// up to the process.
func (b *Backend) Write(p []byte) error {
	b.mu.Lock()
	stdin := b.stdin
	started := b.started
	b.mu.Unlock()

	if !started {
		return ErrNotStarted
	}

	_, err := stdin.Write(p)
	return err
}

// Peek returns accumulated stdout without consuming it
func (b *Backend) Peek() []byte {
	return b.stdout.Peek()
}

// DrainOutput returns and clears accumulated stdout without blocking
func (b *Backend) DrainOutput() []byte {
	return b.stdout.ReadAll()
}

// DrainError returns and clears accumulated stderr without blocking
func (b *Backend) DrainError() []byte {
	return b.stderr.ReadAll()
}

// Done is closed once the process has exited
func (b *Backend) Done() <-chan struct{} {
	return b.done
}

// Exited reports whether the process has terminated
func (b *Backend) Exited() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exited
}

// ExitCode returns the recorded exit code; only meaningful after Exited
func (b *Backend) ExitCode() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exitCode
}

// Signal delivers sig to the process group
func (b *Backend) Signal(sig syscall.Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return ErrNotStarted
	}
	if b.exited {
		return nil
	}

	// The process is its own group leader, so -pid addresses the group.
	return syscall.Kill(-b.cmd.Process.Pid, sig)
}

// Interrupt sends SIGINT to the process group
func (b *Backend) Interrupt() error {
	return b.Signal(syscall.SIGINT)
}

// Terminate requests graceful shutdown of the process group.
// If the process has already exited this is a no-op, not an error.
func (b *Backend) Terminate() error {
	return b.Signal(syscall.SIGTERM)
}
