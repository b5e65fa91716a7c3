// Package server holds the state shared by the MCP server and the CLI.
//
// ServerContext caches one Services bundle per Google account. A bundle
// carries the Classroom client and an extractor and grader wired to the
// Drive, Forms, Docs and Gmail clients of that account. Bundles are created
// lazily from a google.TokenProvider on first use.
//
// MetricsServer exposes Prometheus metrics and the HealthChecker probes on
// a port separate from the MCP endpoint.
package server
