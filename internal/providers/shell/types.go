package shell

import (
	"sync"
	"time"
)

// State represents the lifecycle state of a session
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateTimedOut   State = "timed_out"
	StateExited     State = "exited"
)

// Config holds session tuning parameters
type Config struct {
	// Path is the shell binary to spawn
	Path string
	// Timeout bounds the wait for a command's sentinel
	Timeout time.Duration
	// PollInterval is the delay between output inspections
	PollInterval time.Duration
	// BufferSize caps each output buffer; oldest bytes are dropped when full
	BufferSize int
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Path:         "/bin/bash",
		Timeout:      120 * time.Second,
		PollInterval: 200 * time.Millisecond,
		BufferSize:   1 << 20,
	}
}

// CommandResult holds the separated streams captured for one command
type CommandResult struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Buffer is a thread-safe circular buffer for process output
type Buffer struct {
	data []byte
	size int
	head int
	tail int
	full bool
	mu   sync.RWMutex
}

// NewBuffer creates a new circular buffer
func NewBuffer(size int) *Buffer {
	return &Buffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write appends data, overwriting the oldest bytes when full
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range p {
		b.data[b.tail] = c
		b.tail = (b.tail + 1) % b.size

		if b.full {
			b.head = b.tail
		} else if b.tail == b.head {
			b.full = true
		}
	}

	return len(p), nil
}

// Peek returns a copy of everything accumulated without consuming it
func (b *Buffer) Peek() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot()
}

// ReadAll returns everything accumulated and clears the buffer
func (b *Buffer) ReadAll() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := b.snapshot()
	b.head = b.tail
	b.full = false
	return result
}

// Clear discards all accumulated bytes
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = b.tail
	b.full = false
}

// Len reports the number of accumulated bytes
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.full {
		return b.size
	}
	if b.tail >= b.head {
		return b.tail - b.head
	}
	return b.size - b.head + b.tail
}

// snapshot copies the accumulated region; callers hold the lock
func (b *Buffer) snapshot() []byte {
	if !b.full && b.head == b.tail {
		return []byte{}
	}

	var result []byte
	if !b.full && b.tail > b.head {
		result = make([]byte, b.tail-b.head)
		copy(result, b.data[b.head:b.tail])
	} else {
		// Buffer wrapped around
		firstPart := b.data[b.head:]
		secondPart := b.data[:b.tail]
		result = make([]byte, len(firstPart)+len(secondPart))
		copy(result, firstPart)
		copy(result[len(firstPart):], secondPart)
	}

	return result
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID        string    `json:"id"`
	Shell     string    `json:"shell"`
	State     State     `json:"state"`
	StartedAt time.Time `json:"started_at"`
}
