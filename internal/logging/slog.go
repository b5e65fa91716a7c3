package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation      = "operation"
	KeyService        = "service"
	KeyAccount        = "account"
	KeyUserHash       = "user_hash"
	KeyDuration       = "duration"
	KeyStatus         = "status"
	KeyError          = "error"
	KeyErrorKind      = "error_kind"
	KeyTool           = "tool"
	KeyCourseID       = "course_id"
	KeyCourseWorkID   = "coursework_id"
	KeySubmissionID   = "submission_id"
	KeyAttachmentKind = "attachment_kind"
	KeyTitle          = "title"
	KeyResourceID     = "resource_id"
)

// Status values for consistent logging.
// Duplicated from the instrumentation package, which imports this one.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithSubmission returns a logger scoped to one student submission.
func WithSubmission(logger *slog.Logger, courseID, courseWorkID, submissionID string) *slog.Logger {
	return logger.With(
		slog.String(KeyCourseID, courseID),
		slog.String(KeyCourseWorkID, courseWorkID),
		slog.String(KeySubmissionID, submissionID),
	)
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Account returns a slog attribute for the account name.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// AttachmentKind returns a slog attribute for the attachment kind.
func AttachmentKind(kind string) slog.Attr {
	return slog.String(KeyAttachmentKind, kind)
}

// ErrorKind returns a slog attribute for a classified extraction error.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Title returns a slog attribute for the display title of a file, form or link.
func Title(title string) slog.Attr {
	return slog.String(KeyTitle, title)
}

// ResourceID returns a slog attribute for a Google resource identifier.
func ResourceID(id string) slog.Attr {
	return slog.String(KeyResourceID, id)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that slog omits from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a hashed representation of an email for logging purposes.
// Student addresses are compared case-insensitively, so the hash is too.
func AnonymizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user email.
//
// Usage:
//
//	logger.Info("feedback sent", logging.UserHash(student.Email))
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// ExtractDomain extracts the domain part from an email address.
func ExtractDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the email domain.
func Domain(email string) slog.Attr {
	return slog.String("user_domain", ExtractDomain(email))
}
