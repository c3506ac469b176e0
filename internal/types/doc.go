// Package types defines the shared contract between service providers and
// the hosting server.
//
// A Service describes what a provider offers (tools, parameters, category);
// a Result is the uniform outcome of executing one tool. Providers never
// return transport-level types: the agent framework consumes Result directly.
package types
