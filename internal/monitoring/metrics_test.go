package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two instances must not panic with duplicate registration
	m1 := NewMetrics()
	m2 := NewMetrics()

	assert.NotNil(t, m1)
	assert.NotNil(t, m2)
}

func TestRecordCommand(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("ok", 50*time.Millisecond)
	m.RecordCommand("timeout", 2*time.Second)
	m.IncCommandTimeouts()
	m.IncSessionRestarts()
	m.SetSessionsActive(1)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "agentshell_commands_total"))
	assert.True(t, strings.Contains(body, "agentshell_command_timeouts_total 1"))
	assert.True(t, strings.Contains(body, "agentshell_session_restarts_total 1"))
	assert.True(t, strings.Contains(body, "agentshell_sessions_active 1"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	mreq := httptest.NewRequest("GET", "/metrics", nil)
	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, mreq)
	assert.True(t, strings.Contains(mw.Body.String(), "agentshell_http_requests_total"))
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m)
	time.Sleep(5 * time.Millisecond)
	timer.Stop("ok")

	mreq := httptest.NewRequest("GET", "/metrics", nil)
	mw := httptest.NewRecorder()
	m.Handler().ServeHTTP(mw, mreq)
	assert.True(t, strings.Contains(mw.Body.String(), `agentshell_commands_total{status="ok"} 1`))
}
