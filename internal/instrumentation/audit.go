package instrumentation

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// Audit actions for writes to student records.
const (
	ActionPatchGrade       = "patch_grade"
	ActionReturnSubmission = "return_submission"
	ActionSendFeedback     = "send_feedback_email"
)

// WriteAction describes one write against a student's record: a grade
// patch, a submission return or a feedback email.
//
// StudentEmail is PII. It is anonymized in the log output unless the audit
// logger is configured with IncludePII.
type WriteAction struct {
	Action       string
	CourseID     string
	CourseWorkID string
	SubmissionID string
	StudentEmail string
	Grade        *float64

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
}

// NewWriteAction starts timing a write action.
func NewWriteAction(ctx context.Context, action, courseID, courseWorkID, submissionID string) *WriteAction {
	return &WriteAction{
		Action:       action,
		CourseID:     courseID,
		CourseWorkID: courseWorkID,
		SubmissionID: submissionID,
		StartTime:    time.Now(),
		TraceID:      GetTraceID(ctx),
	}
}

// WithStudent sets the student email the write concerns.
func (wa *WriteAction) WithStudent(email string) *WriteAction {
	wa.StudentEmail = email
	return wa
}

// WithGrade sets the grade being written.
func (wa *WriteAction) WithGrade(grade float64) *WriteAction {
	wa.Grade = &grade
	return wa
}

// Complete records the outcome and duration. A nil err means success.
func (wa *WriteAction) Complete(err error) *WriteAction {
	wa.Duration = time.Since(wa.StartTime)
	wa.Success = err == nil
	if err != nil {
		wa.Error = err.Error()
	}
	return wa
}

// Status returns "success" or "error".
func (wa *WriteAction) Status() string {
	if wa.Success {
		return StatusSuccess
	}
	return StatusError
}

func (wa *WriteAction) logArgs(includePII bool) []any {
	args := []any{
		slog.String("action", wa.Action),
		slog.String(logging.KeyCourseID, wa.CourseID),
		slog.String(logging.KeyCourseWorkID, wa.CourseWorkID),
		slog.Duration(logging.KeyDuration, wa.Duration),
		slog.Bool("success", wa.Success),
	}
	if wa.SubmissionID != "" {
		args = append(args, slog.String(logging.KeySubmissionID, wa.SubmissionID))
	}
	if wa.StudentEmail != "" {
		if includePII {
			args = append(args, slog.String("student", wa.StudentEmail))
		} else {
			args = append(args, logging.UserHash(wa.StudentEmail))
		}
	}
	if wa.Grade != nil {
		args = append(args, slog.String("grade", strconv.FormatFloat(*wa.Grade, 'f', -1, 64)))
	}
	if wa.TraceID != "" {
		args = append(args, slog.String("trace_id", wa.TraceID))
	}
	if wa.Error != "" {
		args = append(args, slog.String(logging.KeyError, wa.Error))
	}
	return args
}

// AuditLogger writes the audit trail for writes to student records.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogWrite logs a completed write action. Safe on a nil receiver.
func (al *AuditLogger) LogWrite(wa *WriteAction) {
	if al == nil || !al.enabled || wa == nil {
		return
	}

	if wa.Success {
		al.logger.Info("student_record_write", wa.logArgs(al.includePII)...)
	} else {
		al.logger.Warn("student_record_write_failed", wa.logArgs(al.includePII)...)
	}
}
