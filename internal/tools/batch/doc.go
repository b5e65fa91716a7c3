// Package batch provides helpers for MCP tools that act on several IDs at once.
//
// Tools accept either a single ID or an array of IDs, run the operation per
// ID in order and report a Result for each, so one failing submission never
// hides the others.
package batch
