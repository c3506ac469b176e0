package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentShell/internal/logging"
	"github.com/GriffinCanCode/AgentShell/internal/monitoring"
	"github.com/GriffinCanCode/AgentShell/internal/types"
)

// Provider exposes the persistent shell session as a service.
// It owns at most one live session at a time; restart swaps it for a
// fresh one.
type Provider struct {
	cfg     Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	session *Session
}

// NewProvider creates a new shell provider
func NewProvider(cfg Config, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		logger: logger,
	}
}

// WithMetrics attaches a metrics collector
func (p *Provider) WithMetrics(m *monitoring.Metrics) *Provider {
	p.metrics = m
	return p
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "shell",
		Name:        "Shell Service",
		Description: "Persistent interactive shell session for executing commands across calls",
		Category:    types.CategoryShell,
		Capabilities: []string{
			"exec",
			"interactive",
			"persistent",
			"interrupt",
			"restart",
		},
		Tools: p.getTools(),
	}
}

// Execute routes to appropriate operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "shell.execute":
		return p.execute(ctx, params)
	case "shell.status":
		return p.status()
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolID)
	}
}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "shell.execute",
			Name:        "Execute Command",
			Description: "Execute a command in the persistent shell session. An empty command retrieves output that accumulated since the last call; 'ctrl+c' interrupts the running command.",
			Parameters: []types.Parameter{
				{
					Name:        "command",
					Type:        "string",
					Description: "Command to execute. Empty to poll for additional output, 'ctrl+c' to interrupt",
					Required:    false,
				},
				{
					Name:        "restart",
					Type:        "boolean",
					Description: "Restart the shell session. The command is ignored for this call. Default is false",
					Required:    false,
				},
			},
			Returns: "command_result",
		},
		{
			ID:          "shell.status",
			Name:        "Session Status",
			Description: "Report the state of the current shell session",
			Parameters:  []types.Parameter{},
			Returns:     "session_info",
		},
	}
}

// execute maps one (command, restart) request onto the session protocol
func (p *Provider) execute(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	command, _ := params["command"].(string)
	restart, _ := params["restart"].(bool)

	p.mu.Lock()
	if restart {
		result, err := p.restartLocked()
		p.mu.Unlock()
		return result, err
	}

	if p.session == nil {
		if command == "" {
			p.mu.Unlock()
			return failure(ErrNoCommand.Error()), nil
		}
		if err := p.startSessionLocked(); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	session := p.session
	p.mu.Unlock()

	timer := p.timer()
	result, err := session.Run(ctx, command)
	if err != nil {
		return p.runFailure(timer, err)
	}

	if p.metrics != nil && isInterrupt(command) {
		p.metrics.IncInterrupts()
	}
	timer.stop("ok")

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"output": result.Output,
			"error":  result.Error,
		},
	}, nil
}

// restartLocked tears down any existing session and starts a fresh one
func (p *Provider) restartLocked() (*types.Result, error) {
	if p.session != nil {
		p.session.Stop()
	}

	if err := p.startSessionLocked(); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.IncSessionRestarts()
	}
	p.logger.Info("shell session restarted",
		zap.String("session_id", p.session.ID.String()),
	)

	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"system": "shell session has been restarted",
		},
	}, nil
}

func (p *Provider) startSessionLocked() error {
	session := NewSession(p.cfg, p.logger)
	if err := session.Start(); err != nil {
		return err
	}

	p.session = session
	if p.metrics != nil {
		p.metrics.SetSessionsActive(1)
	}
	return nil
}

// runFailure converts engine errors into structured results per the
// propagation policy: user-impacting conditions become descriptive
// results the agent can react to, never raised faults.
func (p *Provider) runFailure(t cmdTimer, err error) (*types.Result, error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.stop("exited")
		return &types.Result{
			Success: false,
			Data: map[string]interface{}{
				"system": "shell session must be restarted",
			},
			Error: stringPtr(exitErr.Error()),
		}, nil
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		t.stop("timeout")
		if p.metrics != nil {
			p.metrics.IncCommandTimeouts()
		}
		return failure(timeoutErr.Error()), nil
	}

	t.stop("error")
	return failure(err.Error()), nil
}

func (p *Provider) status() (*types.Result, error) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return &types.Result{
			Success: true,
			Data: map[string]interface{}{
				"state": string(StateNotStarted),
			},
		}, nil
	}

	info := session.Info()
	return &types.Result{
		Success: true,
		Data: map[string]interface{}{
			"id":             info.ID,
			"shell":          info.Shell,
			"state":          string(info.State),
			"started_at":     info.StartedAt,
			"uptime_seconds": time.Since(info.StartedAt).Seconds(),
		},
	}, nil
}

// Close terminates the current session, if any
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.session.Stop()
		p.session = nil
		if p.metrics != nil {
			p.metrics.SetSessionsActive(0)
		}
	}
}

// cmdTimer is a nil-safe wrapper over the monitoring timer
type cmdTimer struct {
	timer *monitoring.Timer
}

func (p *Provider) timer() cmdTimer {
	if p.metrics == nil {
		return cmdTimer{}
	}
	return cmdTimer{timer: monitoring.NewTimer(p.metrics)}
}

func (t cmdTimer) stop(status string) {
	if t.timer != nil {
		t.timer.Stop(status)
	}
}

func failure(msg string) *types.Result {
	return &types.Result{
		Success: false,
		Error:   stringPtr(msg),
	}
}

func stringPtr(s string) *string {
	return &s
}
