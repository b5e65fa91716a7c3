// Package classroom wraps the Google Classroom API and defines the grader's
// domain model: courses, assignments, submissions and the Attachment tagged
// union.
package classroom
