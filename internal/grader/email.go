package grader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/gmail"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// ErrNoMailer is returned by EmailFeedback when the grader has no EmailSender.
var ErrNoMailer = errors.New("no email sender configured")

const defaultAssignmentTitle = "Assignment"

// EmailSummary counts the outcome of EmailFeedback.
type EmailSummary struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

var feedbackEmail = template.Must(template.New("feedback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Assignment Feedback</title>
  <style>
    body { margin: 0; padding: 0; background: #f8fafc; font-family: 'Segoe UI', Roboto, Arial, sans-serif; color: #232946; }
    .container { max-width: 600px; margin: 32px auto; background: #fff; border-radius: 18px; padding: 0 0 36px 0; overflow: hidden; }
    .header { background: #3366cc; color: #fff; padding: 28px 36px 18px 36px; font-size: 1.7em; font-weight: 600; }
    .greeting, .desc, .feedback, .footer { margin: 24px 36px 0 36px; }
    .desc { color: #4f5d75; }
    .feedback { background: #f0f4fc; border-left: 7px solid #3366cc; border-radius: 6px; padding: 24px 20px 18px 22px; line-height: 1.7; white-space: pre-line; }
    .footer { color: #7a7a7a; border-top: 1px solid #e0e7ff; padding-top: 18px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">Your Assignment Feedback</div>
    <div class="greeting">Hello {{.StudentName}},</div>
    <div class="desc">Here is your personalized feedback for <b>{{.AssignmentTitle}}</b>:</div>
    <div class="feedback">{{.Feedback}}</div>
    <div class="footer">Best regards,<br><b>Your Teacher</b> (via AI Assistant)</div>
  </div>
</body>
</html>
`))

type emailData struct {
	StudentName     string
	AssignmentTitle string
	Feedback        string
}

// FeedbackSubject returns the subject line of a feedback email.
func FeedbackSubject(studentName, assignmentTitle string) string {
	return fmt.Sprintf("%s, your feedback for '%s'", studentName, assignmentTitle)
}

// RenderFeedbackEmail renders the HTML body of a feedback email. The
// feedback is sanitized and HTML-escaped.
func RenderFeedbackEmail(studentName, assignmentTitle, text string) (string, error) {
	var buf bytes.Buffer
	err := feedbackEmail.Execute(&buf, emailData{
		StudentName:     studentName,
		AssignmentTitle: assignmentTitle,
		Feedback:        feedback.Sanitize(text, assignmentTitle),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render feedback email: %w", err)
	}
	return buf.String(), nil
}

// EmailFeedback emails generated feedback to each student. Results without
// feedback are skipped; results without a student email, and failed sends,
// are counted as failed. names may be nil.
func (g *Grader) EmailFeedback(ctx context.Context, results []Processed, names *NameCache) (EmailSummary, error) {
	var summary EmailSummary
	if g.mailer == nil {
		return summary, ErrNoMailer
	}
	if names == nil {
		names = g.NewNameCache()
	}

	for _, res := range results {
		logger := logging.WithSubmission(g.logger, res.CourseID, res.CourseWorkID, res.SubmissionID)

		if !res.HasFeedback() {
			logger.Warn("Skipping email, no feedback generated", slog.String(logging.KeyStatus, string(res.Status)))
			summary.Skipped++
			continue
		}
		if res.StudentEmail == "" {
			logger.Warn("Skipping email, student email not found")
			g.metrics.RecordEmail(ctx, instrumentation.StatusError)
			summary.Failed++
			continue
		}

		name := names.Name(ctx, res.UserID)
		if res.UserID == "" && res.StudentName != "" {
			name = res.StudentName
		}
		title := res.AssignmentTitle
		if title == "" {
			title = defaultAssignmentTitle
		}

		action := instrumentation.NewWriteAction(ctx, instrumentation.ActionSendFeedback, res.CourseID, res.CourseWorkID, res.SubmissionID).
			WithStudent(res.StudentEmail)

		err := g.sendFeedback(ctx, res.StudentEmail, name, title, res.Feedback)
		g.audit.LogWrite(action.Complete(err))
		g.metrics.RecordEmail(ctx, action.Status())
		if err != nil {
			logger.Error("Failed to send feedback email", logging.UserHash(res.StudentEmail), logging.Err(err))
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	g.logger.Info("Finished emailing feedback",
		slog.Int("sent", summary.Sent),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

func (g *Grader) sendFeedback(ctx context.Context, to, name, title, text string) error {
	body, err := RenderFeedbackEmail(name, title, text)
	if err != nil {
		return err
	}
	_, err = g.mailer.SendEmail(ctx, &gmail.EmailMessage{
		To:      []string{to},
		Subject: FeedbackSubject(name, title),
		Body:    body,
		IsHTML:  true,
	})
	return err
}
