// Package classroom_tools provides MCP tools over Google Classroom and the
// submission extraction pipeline.
//
// Read tools:
//   - classroom_list_courses, classroom_list_assignments, classroom_list_submissions
//   - classroom_extract_submission: text content of one or more submissions
//   - classroom_extract_drive_file, classroom_extract_form, classroom_extract_link:
//     text content of a single attachment
//   - classroom_generate_feedback: extraction followed by AI feedback, nothing is written
//
// Write tools, registered only when the server is not read-only:
//   - classroom_patch_grade
//   - classroom_return_submission
//
// Every tool accepts an optional "account" argument naming the Google
// account whose token is used.
package classroom_tools
