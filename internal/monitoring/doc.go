// Package monitoring provides Prometheus metrics for the service.
//
// Metrics Categories:
//   - HTTP: request counts and latency histograms
//   - Commands: shell command counts by status, duration, timeouts, interrupts
//   - Sessions: live session gauge, restart counter
//   - System: uptime
//
// Each Metrics instance owns its own registry so tests can create
// collectors freely without duplicate-registration panics.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package monitoring
