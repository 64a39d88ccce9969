// Package mcp provides an MCP (Model Context Protocol) server adapter for imgscout.
// It lets AI assistants search the image catalog and read or write image comments.
package mcp

import "errors"

// ErrMissingRepository is returned when the image repository is not provided.
var ErrMissingRepository = errors.New("mcp: image repository is required")
