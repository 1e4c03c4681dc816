// Package cli constructs the ghmcp command-line interface and starts the MCP server.
package cli
