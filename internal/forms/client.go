package forms

import (
	"context"
	"fmt"

	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

// responsePageSize is the largest page the Forms API accepts.
const responsePageSize = 5000

// Client wraps the Google Forms API service
type Client struct {
	service *forms.Service
	account string
	api     google.APIOptions
}

// NewClient creates a Forms client from explicit client options.
func NewClient(ctx context.Context, api google.APIOptions, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := forms.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms service: %w", err)
	}
	return &Client{service: svc, api: api}, nil
}

// NewClientForAccount creates a Forms client authenticated as account.
func NewClientForAccount(ctx context.Context, tp google.TokenProvider, account string, api google.APIOptions) (*Client, error) {
	httpClient, err := tp.HTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	c, err := NewClient(ctx, api, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	c.account = account
	return c, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// GetStructure fetches the title and ordered questions of a form.
func (c *Client) GetStructure(ctx context.Context, formID string) (*Structure, error) {
	if formID == "" {
		return nil, fmt.Errorf("form ID is required")
	}

	f, err := google.Call(ctx, c.api, instrumentation.ServiceForms, instrumentation.OperationGet, formID,
		func(ctx context.Context) (*forms.Form, error) {
			return c.service.Forms.Get(formID).Context(ctx).Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}
	return convertForm(f), nil
}

// ListResponses fetches every response of a form, following pagination.
func (c *Client) ListResponses(ctx context.Context, formID string) ([]Response, error) {
	if formID == "" {
		return nil, fmt.Errorf("form ID is required")
	}

	var responses []Response
	pageToken := ""
	for {
		resp, err := google.Call(ctx, c.api, instrumentation.ServiceForms, instrumentation.OperationList, formID,
			func(ctx context.Context) (*forms.ListFormResponsesResponse, error) {
				return c.service.Forms.Responses.List(formID).
					PageSize(responsePageSize).
					PageToken(pageToken).
					Context(ctx).
					Do()
			})
		if err != nil {
			return nil, fmt.Errorf("failed to list responses for form %s: %w", formID, err)
		}
		for _, r := range resp.Responses {
			responses = append(responses, convertResponse(r))
		}
		if resp.NextPageToken == "" {
			return responses, nil
		}
		pageToken = resp.NextPageToken
	}
}

func convertForm(f *forms.Form) *Structure {
	s := &Structure{FormID: f.FormId}
	if f.Info != nil {
		s.Title = f.Info.Title
		if s.Title == "" {
			s.Title = f.Info.DocumentTitle
		}
	}
	if f.Settings != nil && f.Settings.QuizSettings != nil {
		s.IsQuiz = f.Settings.QuizSettings.IsQuiz
	}

	for _, item := range f.Items {
		switch {
		case item.QuestionItem != nil && item.QuestionItem.Question != nil:
			s.Questions = append(s.Questions, convertQuestion(item.QuestionItem.Question, item.Title))
		case item.QuestionGroupItem != nil:
			// Grid rows are separate questions titled "<item>: <row>".
			for _, q := range item.QuestionGroupItem.Questions {
				title := item.Title
				if q.RowQuestion != nil && q.RowQuestion.Title != "" {
					title = item.Title + ": " + q.RowQuestion.Title
				}
				question := convertQuestion(q, title)
				if grid := item.QuestionGroupItem.Grid; grid != nil && grid.Columns != nil {
					question.Options = choiceValues(grid.Columns.Options)
				}
				s.Questions = append(s.Questions, question)
			}
		}
	}
	return s
}

func convertQuestion(q *forms.Question, title string) Question {
	question := Question{ID: q.QuestionId, Title: title, Type: questionType(q)}
	if q.ChoiceQuestion != nil {
		question.Options = choiceValues(q.ChoiceQuestion.Options)
	}
	if q.Grading != nil {
		question.PointValue = q.Grading.PointValue
		if q.Grading.CorrectAnswers != nil {
			for _, a := range q.Grading.CorrectAnswers.Answers {
				question.CorrectAnswers = append(question.CorrectAnswers, a.Value)
			}
		}
	}
	return question
}

func questionType(q *forms.Question) string {
	switch {
	case q.ChoiceQuestion != nil:
		if q.ChoiceQuestion.Type != "" {
			return q.ChoiceQuestion.Type
		}
		return "CHOICE"
	case q.TextQuestion != nil:
		if q.TextQuestion.Paragraph {
			return "PARAGRAPH_TEXT"
		}
		return "TEXT"
	case q.ScaleQuestion != nil:
		return "SCALE"
	case q.DateQuestion != nil:
		return "DATE"
	case q.TimeQuestion != nil:
		return "TIME"
	case q.FileUploadQuestion != nil:
		return "FILE_UPLOAD"
	case q.RowQuestion != nil:
		return "ROW"
	}
	return "UNKNOWN"
}

func choiceValues(options []*forms.Option) []string {
	var values []string
	for _, o := range options {
		if o.IsOther {
			values = append(values, "Other")
			continue
		}
		values = append(values, o.Value)
	}
	return values
}

func convertResponse(r *forms.FormResponse) Response {
	resp := Response{
		ID:              r.ResponseId,
		RespondentEmail: r.RespondentEmail,
	}
	if r.TotalScore != 0 {
		score := r.TotalScore
		resp.TotalScore = &score
	}
	if len(r.Answers) > 0 {
		resp.Answers = make(map[string][]string, len(r.Answers))
		for qid, a := range r.Answers {
			var values []string
			if a.TextAnswers != nil {
				for _, v := range a.TextAnswers.Answers {
					values = append(values, v.Value)
				}
			}
			if a.FileUploadAnswers != nil {
				for _, f := range a.FileUploadAnswers.Answers {
					values = append(values, "[file] "+f.FileName)
				}
			}
			resp.Answers[qid] = values
		}
	}
	return resp
}
