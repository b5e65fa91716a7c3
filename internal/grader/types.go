package grader

import (
	"context"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/gmail"
)

// Status is the processing outcome of one submission.
type Status string

const (
	StatusOK               Status = "ok"
	StatusNotProcessable   Status = "not_processable"
	StatusExtractionFailed Status = "extraction_failed"
	StatusFeedbackFailed   Status = "feedback_failed"
	StatusFeedbackSkipped  Status = "feedback_skipped"
)

// DefaultGrade is applied when a result carries neither an explicit nor a current grade.
const DefaultGrade = 100.0

// Processed is the outcome of processing one submission.
type Processed struct {
	SubmissionID    string                    `json:"submissionId"`
	UserID          string                    `json:"userId"`
	CourseID        string                    `json:"courseId"`
	CourseWorkID    string                    `json:"courseWorkId"`
	AssignmentTitle string                    `json:"assignmentTitle,omitempty"`
	StudentEmail    string                    `json:"studentEmail,omitempty"`
	StudentName     string                    `json:"studentName,omitempty"`
	State           classroom.SubmissionState `json:"state"`
	CurrentGrade    *float64                  `json:"currentGrade,omitempty"`
	// Grade, when set, is applied instead of CurrentGrade.
	Grade    *float64 `json:"grade,omitempty"`
	Content  string   `json:"content,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
	Status   Status   `json:"status"`
	// Message explains a status other than StatusOK.
	Message string `json:"message,omitempty"`
	// ErrorKind is the extraction error kind for StatusExtractionFailed.
	ErrorKind string `json:"errorKind,omitempty"`
}

// HasFeedback reports whether feedback was generated for the submission.
func (p Processed) HasFeedback() bool {
	return p.Status == StatusOK && p.Feedback != ""
}

// ClassroomAPI is the subset of the Classroom client the grader uses.
type ClassroomAPI interface {
	ProfileLookup
	GetAssignment(ctx context.Context, courseID, courseWorkID string) (*classroom.Assignment, error)
	ListSubmissions(ctx context.Context, courseID, courseWorkID string) ([]classroom.Submission, error)
	GetSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) (*classroom.Submission, error)
	PatchGrade(ctx context.Context, courseID, courseWorkID, submissionID string, grade float64) error
	ReturnSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) error
}

// ProfileLookup resolves a Classroom user ID to a profile.
type ProfileLookup interface {
	GetStudentProfile(ctx context.Context, userID string) (*classroom.StudentProfile, error)
}

// ContentExtractor produces the text content of a submission.
type ContentExtractor interface {
	ExtractContent(ctx context.Context, sub *classroom.Submission, studentEmail string) (string, error)
}

// EmailSender delivers email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg *gmail.EmailMessage) (string, error)
}
