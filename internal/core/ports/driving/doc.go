// Package driving declares what the CLI, TUI and MCP adapters may ask of
// the core: image search, comment storage and settings. The services
// package implements these interfaces.
package driving
