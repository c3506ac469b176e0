// Package shell provides a persistent interactive shell session service.
//
// The provider keeps a single long-lived shell process alive across
// discrete tool calls, giving a calling agent the illusion of typing into
// a live terminal. The shell produces unbounded, unstructured byte
// streams with no end-of-output signal, so command completion is detected
// by echoing a per-session sentinel after each command and polling the
// output buffer until it arrives.
//
// Architecture (leaves first):
//   - Backend: spawns and owns one shell process in its own process
//     group, with piped stdin/stdout/stderr draining into independent
//     clear-on-read buffers
//   - Session: the sentinel protocol engine; owns the state machine
//     (NotStarted -> Running -> TimedOut | Exited), the poll loop, the
//     timeout, and interrupt delivery
//   - Provider: the lifecycle facade; lazy session creation, explicit
//     restart, and conversion of engine errors into structured results
//
// Policy:
//   - A command that outruns the timeout marks the session TimedOut;
//     further commands are rejected until an explicit restart. The
//     command itself keeps running; the timeout only cancels the wait.
//   - A shell that exits on its own surfaces a structured "must restart"
//     result, never a fault.
//   - An empty command polls for output accumulated since the last call;
//     "ctrl+c" sends SIGINT to the process group instead of stdin.
//   - Sentinel framing is heuristic: output containing the sentinel is
//     truncated at its first occurrence. Accepted limitation.
//
// Example Usage:
//
//	provider := shell.NewProvider(shell.DefaultConfig(), logger)
//	result, err := provider.Execute(ctx, "shell.execute",
//		map[string]interface{}{"command": "echo hello"}, nil)
//	// -> Data: {"output": "hello", "error": ""}
//
// Tools:
//   - shell.execute: run a command (or poll / interrupt / restart)
//   - shell.status: report session state
package shell
