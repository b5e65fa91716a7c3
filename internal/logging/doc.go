// Package logging provides structured logging utilities for classroom-grader.
//
// All components log through log/slog with the attribute keys defined here,
// so a submission can be followed across extraction, feedback and write-back
// by filtering on course_id, coursework_id and submission_id.
//
// # Usage Patterns
//
// Scope a logger to one submission:
//
//	logger := logging.WithSubmission(slog.Default(), courseID, courseWorkID, sub.ID)
//	logger.Info("content extracted", logging.Status(logging.StatusSuccess))
//
// Never log student addresses in clear text:
//
//	logger.Info("feedback sent", logging.UserHash(email))
package logging
