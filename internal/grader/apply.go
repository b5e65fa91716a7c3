package grader

import (
	"context"
	"log/slog"

	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// ApplyOptions selects the writes ApplyGrades performs.
type ApplyOptions struct {
	// Grades patches the assigned and draft grade.
	Grades bool
	// Return returns the submission to the student.
	Return bool
}

// ApplySummary counts the outcome of ApplyGrades.
type ApplySummary struct {
	Patched  int `json:"patched"`
	Returned int `json:"returned"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ResolveGrade returns the grade ApplyGrades writes for res: the explicit
// grade, else the current grade, else DefaultGrade.
func ResolveGrade(res Processed) float64 {
	if res.Grade != nil {
		return *res.Grade
	}
	if res.CurrentGrade != nil {
		return *res.CurrentGrade
	}
	return DefaultGrade
}

// ApplyGrades writes grades and returns submissions for every result with
// StatusOK. Failures are logged and counted, never returned.
func (g *Grader) ApplyGrades(ctx context.Context, courseID, courseWorkID string, results []Processed, opts ApplyOptions) ApplySummary {
	var summary ApplySummary

	for _, res := range results {
		logger := logging.WithSubmission(g.logger, courseID, courseWorkID, res.SubmissionID)
		if res.SubmissionID == "" || res.Status != StatusOK {
			logger.Warn("Skipping grade actions", slog.String(logging.KeyStatus, string(res.Status)), slog.String("reason", res.Message))
			summary.Skipped++
			continue
		}

		failed := false
		if opts.Grades {
			if err := g.WriteGrade(ctx, courseID, courseWorkID, res.SubmissionID, res.StudentEmail, ResolveGrade(res)); err != nil {
				logger.Error("Failed to patch grade", logging.Err(err))
				failed = true
			} else {
				summary.Patched++
			}
		}

		if opts.Return && !failed {
			if err := g.Return(ctx, courseID, courseWorkID, res.SubmissionID, res.StudentEmail); err != nil {
				logger.Error("Failed to return submission", logging.Err(err))
				failed = true
			} else {
				summary.Returned++
			}
		}

		if failed {
			summary.Failed++
		}
	}

	g.logger.Info("Finished applying grades",
		slog.Int("patched", summary.Patched),
		slog.Int("returned", summary.Returned),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary
}

// WriteGrade sets the assigned and draft grade of one submission and records
// the write in the audit log. studentEmail is only used for the audit entry.
func (g *Grader) WriteGrade(ctx context.Context, courseID, courseWorkID, submissionID, studentEmail string, grade float64) error {
	action := instrumentation.NewWriteAction(ctx, instrumentation.ActionPatchGrade, courseID, courseWorkID, submissionID).
		WithStudent(studentEmail).
		WithGrade(grade)
	err := g.classroom.PatchGrade(ctx, courseID, courseWorkID, submissionID, grade)
	g.audit.LogWrite(action.Complete(err))
	g.metrics.RecordGradeWrite(ctx, instrumentation.ActionPatchGrade, action.Status())
	return err
}

// Return returns one submission to the student and records the write in
// the audit log.
func (g *Grader) Return(ctx context.Context, courseID, courseWorkID, submissionID, studentEmail string) error {
	action := instrumentation.NewWriteAction(ctx, instrumentation.ActionReturnSubmission, courseID, courseWorkID, submissionID).
		WithStudent(studentEmail)
	err := g.classroom.ReturnSubmission(ctx, courseID, courseWorkID, submissionID)
	g.audit.LogWrite(action.Complete(err))
	g.metrics.RecordGradeWrite(ctx, instrumentation.ActionReturnSubmission, action.Status())
	return err
}
