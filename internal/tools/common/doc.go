// Package common provides shared utilities for MCP tool implementations.
// It contains argument parsing, account resolution, result rendering and
// the instrumentation wrapper used by every Fizzy tool package.
package common
