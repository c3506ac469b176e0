// Package server wires configuration, logging, metrics, middleware, and
// the provider registry into one HTTP service.
//
// Endpoints:
//   - GET  /health            service health and registry stats
//   - GET  /services          registered service definitions
//   - POST /services/discover intent-based service discovery
//   - POST /services/execute  execute one tool by ID
//   - GET  /metrics           Prometheus exposition
//
// The tool boundary itself is the structured registry.Execute call; HTTP
// is only the hosting surface.
package server
