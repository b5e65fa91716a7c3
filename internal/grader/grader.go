package grader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// Options configures a Grader. Every field is optional.
type Options struct {
	// Feedback generates AI feedback. Without it submissions end in
	// StatusFeedbackSkipped.
	Feedback feedback.Generator
	// Mailer sends feedback emails.
	Mailer  EmailSender
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
	Logger  *slog.Logger
}

// Grader runs the grading workflow for one assignment: extract every
// submission, generate feedback, then write grades and email students.
type Grader struct {
	classroom ClassroomAPI
	extractor ContentExtractor
	feedback  feedback.Generator
	mailer    EmailSender
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	logger    *slog.Logger
}

// New creates a Grader.
func New(classroomAPI ClassroomAPI, extractor ContentExtractor, opts Options) *Grader {
	return &Grader{
		classroom: classroomAPI,
		extractor: extractor,
		feedback:  opts.Feedback,
		mailer:    opts.Mailer,
		metrics:   opts.Metrics,
		audit:     opts.Audit,
		logger:    logging.OrDefault(opts.Logger),
	}
}

// NewNameCache creates a NameCache backed by the grader's Classroom client.
func (g *Grader) NewNameCache() *NameCache {
	return NewNameCache(g.classroom, g.logger)
}

// ProcessAssignment extracts and generates feedback for every submission of
// an assignment, in the order Classroom lists them. Only a failure to list
// the submissions is returned as an error; per-submission failures are
// reported through Processed.Status. names may be nil.
func (g *Grader) ProcessAssignment(ctx context.Context, courseID, courseWorkID string, names *NameCache) ([]Processed, error) {
	if names == nil {
		names = g.NewNameCache()
	}
	logger := g.logger.With(slog.String(logging.KeyCourseID, courseID), slog.String(logging.KeyCourseWorkID, courseWorkID))
	logger.Info("Starting assignment processing")

	var title string
	if assignment, err := g.classroom.GetAssignment(ctx, courseID, courseWorkID); err != nil {
		logger.Warn("Could not fetch assignment title", logging.Err(err))
	} else {
		title = assignment.Title
	}

	submissions, err := g.classroom.ListSubmissions(ctx, courseID, courseWorkID)
	if err != nil {
		logger.Error("Failed to list submissions, aborting", logging.Err(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	logger.Info("Found submissions to process", slog.Int("count", len(submissions)))

	results := make([]Processed, 0, len(submissions))
	for i := range submissions {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := g.processSubmission(ctx, &submissions[i], title, names)
		g.metrics.RecordSubmission(ctx, courseID, string(res.Status))
		results = append(results, res)
	}

	logger.Info("Finished assignment processing", slog.Int("processed", len(results)))
	return results, nil
}

// ProcessSubmission runs extraction and feedback for a single submission.
// Only a failure to fetch the submission is returned as an error.
func (g *Grader) ProcessSubmission(ctx context.Context, courseID, courseWorkID, submissionID string, names *NameCache) (Processed, error) {
	if names == nil {
		names = g.NewNameCache()
	}

	var title string
	if assignment, err := g.classroom.GetAssignment(ctx, courseID, courseWorkID); err == nil {
		title = assignment.Title
	}

	sub, err := g.classroom.GetSubmission(ctx, courseID, courseWorkID, submissionID)
	if err != nil {
		return Processed{}, err
	}
	res := g.processSubmission(ctx, sub, title, names)
	g.metrics.RecordSubmission(ctx, courseID, string(res.Status))
	return res, nil
}

func (g *Grader) processSubmission(ctx context.Context, sub *classroom.Submission, title string, names *NameCache) Processed {
	profile := names.Profile(ctx, sub.UserID)
	res := Processed{
		SubmissionID:    sub.ID,
		UserID:          sub.UserID,
		CourseID:        sub.CourseID,
		CourseWorkID:    sub.CourseWorkID,
		AssignmentTitle: title,
		StudentEmail:    profile.Email,
		StudentName:     profile.DisplayName(),
		State:           sub.State,
		CurrentGrade:    sub.CurrentGrade(),
	}
	logger := logging.WithSubmission(g.logger, sub.CourseID, sub.CourseWorkID, sub.ID)

	if !sub.State.Processable() {
		logger.Info("Skipping submission", slog.String("state", string(sub.State)))
		res.Status = StatusNotProcessable
		res.Message = fmt.Sprintf("Submission not in processable state (%s)", sub.State)
		return res
	}

	content, err := g.extractor.ExtractContent(ctx, sub, profile.Email)
	switch {
	case err != nil:
		res.Status = StatusExtractionFailed
		res.Message = "Content extraction failed: " + err.Error()
		res.ErrorKind = extract.KindOf(err).String()
		logger.Error("Content extraction failed", logging.ErrorKind(res.ErrorKind), logging.Err(err))
		return res
	case content == "":
		res.Status = StatusExtractionFailed
		res.Message = "No content could be extracted (unknown reason)."
		return res
	}
	res.Content = content
	logger.Info("Extracted submission content", slog.Int("chars", len(content)))

	if g.feedback == nil {
		res.Status = StatusFeedbackSkipped
		res.Message = "AI feedback skipped (no client)"
		g.metrics.RecordFeedback(ctx, "skipped", 0)
		return res
	}

	start := time.Now()
	text, err := g.feedback.Generate(ctx, content)
	if err != nil {
		g.metrics.RecordFeedback(ctx, instrumentation.StatusError, time.Since(start))
		logger.Error("AI feedback generation failed", logging.Err(err))
		res.Status = StatusFeedbackFailed
		res.Message = "AI feedback generation failed: " + err.Error()
		return res
	}
	g.metrics.RecordFeedback(ctx, instrumentation.StatusSuccess, time.Since(start))

	res.Feedback = text
	res.Status = StatusOK
	return res
}
