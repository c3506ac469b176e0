// Package service provides the provider registry for the agent tool surface.
//
// The registry maintains a catalog of service providers and routes
// `<service>.<tool>` IDs to the owning provider.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//   - Service discovery with relevance scoring
//
// Features:
//   - Thread-safe service registration
//   - Category-based filtering
//   - Intent-based discovery with scoring
//   - Tool execution with context passing
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(shellProvider)
//	result, err := registry.Execute(ctx, "shell.execute", params, appCtx)
package service
