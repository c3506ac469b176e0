package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentShell/internal/config"
	"github.com/GriffinCanCode/AgentShell/internal/logging"
	"github.com/GriffinCanCode/AgentShell/internal/middleware"
	"github.com/GriffinCanCode/AgentShell/internal/monitoring"
	"github.com/GriffinCanCode/AgentShell/internal/providers/shell"
	"github.com/GriffinCanCode/AgentShell/internal/service"
	"github.com/GriffinCanCode/AgentShell/internal/shared/id"
	"github.com/GriffinCanCode/AgentShell/internal/types"
	"github.com/GriffinCanCode/AgentShell/internal/utils"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router    *gin.Engine
	registry  *service.Registry
	shell     *shell.Provider
	validator *utils.ParamsValidator
	logger    *logging.Logger
	config    *config.Config
	metrics   *monitoring.Metrics
	httpSrv   *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing AgentShell server",
		zap.String("port", cfg.Server.Port),
		zap.String("shell", cfg.Shell.Path),
		zap.Duration("timeout", cfg.Shell.Timeout),
	)

	metrics := monitoring.NewMetrics()

	// Register the shell provider
	registry := service.NewRegistry()
	shellProvider := shell.NewProvider(shell.Config{
		Path:         cfg.Shell.Path,
		Timeout:      cfg.Shell.Timeout,
		PollInterval: cfg.Shell.PollInterval,
		BufferSize:   cfg.Shell.BufferSize,
	}, logger).WithMetrics(metrics)

	if err := registry.Register(shellProvider); err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router:    router,
		registry:  registry,
		shell:     shellProvider,
		validator: utils.DefaultParamsValidator(),
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}

	router.GET("/", s.root)
	router.GET("/health", s.health)
	router.GET("/services", s.listServices)
	router.POST("/services/discover", s.discoverServices)
	router.POST("/services/execute", s.executeService)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close gracefully shuts down the server and the shell session
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.shell.Close()

	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("Server shut down")
	return s.logger.Sync()
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "agentshell",
		"status":  "running",
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"services": s.registry.Stats(),
	})
}

func (s *Server) listServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": s.registry.List(category),
	})
}

type discoverRequest struct {
	Intent string `json:"intent" binding:"required"`
	Limit  int    `json:"limit"`
}

func (s *Server) discoverServices(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	c.JSON(http.StatusOK, gin.H{
		"services": s.registry.Discover(req.Intent, req.Limit),
	})
}

type executeRequest struct {
	ToolID  string                 `json:"tool_id" binding:"required"`
	Params  map[string]interface{} `json:"params"`
	AgentID *string                `json:"agent_id,omitempty"`
}

func (s *Server) executeService(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Validate(req.Params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if command, ok := req.Params["command"].(string); ok {
		if err := utils.ValidateCommand(command); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	requestID := id.NewRequestID().String()
	appCtx := &types.Context{
		AgentID:   req.AgentID,
		RequestID: &requestID,
	}

	result, err := s.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		s.logger.Error("Tool execution failed",
			zap.String("tool_id", req.ToolID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		// Unexpected faults become a descriptive error payload, never a panic
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
