// Package common holds the helpers shared by the MCP tool packages: account
// resolution, argument parsing, JSON results and the instrumented handler
// wrapper that records spans and invocation metrics for every tool.
package common
