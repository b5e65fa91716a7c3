// Package cmd implements the command-line interface for classroom-grader.
//
// This package provides the following commands:
//   - auth: Authorize a Google account and store its token
//   - courses: List active courses
//   - assignments: List the assignments of a course
//   - extract: Print the extracted content of submissions
//   - grade: Draft feedback, then optionally write grades, return work and email students
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The courses command is the default command when no subcommand is specified.
package cmd
