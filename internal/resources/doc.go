// Package resources provides MCP resources for the grader. Resources are
// read-only data sources that MCP clients can fetch without calling a tool,
// such as the teacher's active courses or the effective account settings.
package resources
