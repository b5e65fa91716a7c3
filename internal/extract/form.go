package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/forms"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

const (
	untitledForm        = "Untitled Form"
	noAnswerProvided    = "(No answer provided)"
	transcriptSeparator = "\n\n---\n\n"
)

// Strategies that select the responses of a form attachment.
const (
	MatchByEmail      = "email"
	MatchByResponseID = "response_id"
	MatchAll          = "all"
)

// FormExtractor turns a form attachment into a question/answer transcript.
type FormExtractor struct {
	forms   FormProvider
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewFormExtractor creates a FormExtractor. metrics may be nil.
func NewFormExtractor(provider FormProvider, metrics *instrumentation.Metrics, logger *slog.Logger) *FormExtractor {
	return &FormExtractor{
		forms:   provider,
		metrics: metrics,
		logger:  logging.OrDefault(logger),
	}
}

// Extract renders the responses of ref that belong to studentEmail.
//
// Responses are matched by respondent email first, then by the response ID
// embedded in the attachment's response URL. When neither matches, every
// response of the form is rendered.
func (e *FormExtractor) Extract(ctx context.Context, ref classroom.FormRef, studentEmail string) (string, error) {
	title := ref.Title
	if title == "" {
		title = untitledForm
	}

	if ref.FormURL == "" {
		return "", &Error{Kind: KindStructuralMismatch, Message: "Form attachment has no URL."}
	}
	formID := forms.ParseFormID(ref.FormURL)
	if formID == "" {
		return "", &Error{Kind: KindStructuralMismatch, Message: "Could not parse Form ID from URL."}
	}

	logger := e.logger.With(logging.ResourceID(formID), logging.Title(title))

	structure, err := e.forms.GetStructure(ctx, formID)
	if err != nil {
		return "", formFailure(title, err)
	}
	responses, err := e.forms.ListResponses(ctx, formID)
	if err != nil {
		return "", formFailure(title, err)
	}

	matched, strategy := matchResponses(responses, studentEmail, forms.ParseResponseID(ref.ResponseURL))
	if len(matched) == 0 {
		return "", &Error{Kind: KindNotFoundLocally, Message: fmt.Sprintf("No responses found or matched for form '%s'.", title)}
	}
	e.metrics.RecordFormMatch(ctx, strategy)
	if len(matched) > 1 {
		logger.Warn("Multiple form responses selected, combining transcripts",
			slog.String("strategy", strategy),
			slog.Int("responses", len(matched)))
	}

	transcripts := make([]string, 0, len(matched))
	for _, resp := range matched {
		if t := Transcript(structure, resp); t != "" {
			transcripts = append(transcripts, t)
		}
	}
	if len(transcripts) == 0 {
		return "", &Error{Kind: KindStructuralMismatch, Message: fmt.Sprintf("Failed to format responses for form '%s'.", title)}
	}
	return strings.Join(transcripts, transcriptSeparator), nil
}

// matchResponses selects the responses of one student. An email match wins
// over a response ID match; with neither, all responses are returned.
func matchResponses(responses []forms.Response, studentEmail, responseID string) ([]forms.Response, string) {
	if email := strings.TrimSpace(studentEmail); email != "" {
		var byEmail []forms.Response
		for _, r := range responses {
			if strings.EqualFold(strings.TrimSpace(r.RespondentEmail), email) {
				byEmail = append(byEmail, r)
			}
		}
		if len(byEmail) > 0 {
			return byEmail, MatchByEmail
		}
	}

	if responseID != "" {
		for _, r := range responses {
			if r.ID == responseID {
				return []forms.Response{r}, MatchByResponseID
			}
		}
	}

	return responses, MatchAll
}

// Transcript renders one response against the form's questions, in question order.
func Transcript(structure *forms.Structure, resp forms.Response) string {
	var b strings.Builder

	formTitle := untitledForm
	if structure != nil && structure.Title != "" {
		formTitle = structure.Title
	}
	respondent := resp.RespondentEmail
	if respondent == "" {
		respondent = "anonymous"
	}

	fmt.Fprintf(&b, "Form Title: %s\n", formTitle)
	fmt.Fprintf(&b, "Respondent: %s\n", respondent)
	fmt.Fprintf(&b, "Response ID: %s\n", resp.ID)
	if resp.TotalScore != nil {
		fmt.Fprintf(&b, "Score: %s\n", strconv.FormatFloat(*resp.TotalScore, 'f', -1, 64))
	}
	b.WriteString("---\n\n")

	if structure != nil {
		for _, q := range structure.Questions {
			fmt.Fprintf(&b, "Q: %s\n", q.Title)
			if len(q.Options) > 0 {
				fmt.Fprintf(&b, "Options: %s\n", strings.Join(q.Options, ", "))
			}
			if len(q.CorrectAnswers) > 0 {
				fmt.Fprintf(&b, "Correct Answer: %s\n", strings.Join(q.CorrectAnswers, ", "))
			}
			if answers := resp.Answers[q.ID]; len(answers) > 0 {
				fmt.Fprintf(&b, "A: %s\n\n", strings.Join(answers, ", "))
			} else {
				fmt.Fprintf(&b, "A: %s\n\n", noAnswerProvided)
			}
		}
	}

	return strings.TrimSpace(b.String())
}

func formFailure(title string, err error) *Error {
	if !isAPIError(err) && providerErrorKind(err) == KindUnexpected {
		return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("Unexpected error with form '%s': %v", title, err), Err: err}
	}
	return &Error{Kind: providerErrorKind(err), Message: fmt.Sprintf("Error accessing form '%s': %v", title, err), Err: err}
}
