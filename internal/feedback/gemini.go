package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash-latest"

// Placeholder texts returned instead of generated feedback.
const (
	EmptySubmissionText = "(Submission content was empty)"
	EmptyFeedbackText   = "(AI feedback generation resulted in empty text)"
)

// ErrBlocked is returned when Gemini refuses the prompt or stops for safety.
var ErrBlocked = errors.New("feedback generation blocked due to safety settings")

var harmCategories = []genai.HarmCategory{
	genai.HarmCategoryDangerousContent,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategoryHarassment,
	genai.HarmCategorySexuallyExplicit,
}

// Generator produces feedback for the extracted text of a submission.
type Generator interface {
	Generate(ctx context.Context, content string) (string, error)
}

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	APIKey         string
	Model          string
	PromptTemplate string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	HTTPClient *http.Client
	API        google.APIOptions
	Logger     *slog.Logger
}

// GeminiClient generates feedback with the Gemini generateContent API.
type GeminiClient struct {
	models   *genai.Models
	model    string
	template string
	api      google.APIOptions
	logger   *slog.Logger
}

// NewGeminiClient creates a GeminiClient for the Gemini Developer API.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.PromptTemplate == "" {
		opts.PromptTemplate = DefaultPromptTemplate
	}
	if err := ValidateTemplate(opts.PromptTemplate); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger := logging.OrDefault(opts.Logger)
	api := opts.API
	if api.Logger == nil {
		api.Logger = logger
	}

	return &GeminiClient{
		models:   client.Models,
		model:    strings.TrimPrefix(opts.Model, "models/"),
		template: opts.PromptTemplate,
		api:      api,
		logger:   logger,
	}, nil
}

// Model returns the model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate returns feedback for content. Empty content yields
// EmptySubmissionText without calling the API.
func (c *GeminiClient) Generate(ctx context.Context, content string) (string, error) {
	if content == "" {
		c.logger.Warn("Submission content is empty, cannot generate feedback")
		return EmptySubmissionText, nil
	}

	prompt, err := RenderPrompt(c.template, content)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Generating Gemini feedback", slog.String("model", c.model), slog.Int("prompt_chars", len(prompt)))

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{SafetySettings: safetySettings()}

	resp, err := google.Call(ctx, c.api, instrumentation.ServiceGemini, instrumentation.OperationGenerate, c.model,
		func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
			return resp, asGoogleAPIError(err)
		})
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	return c.feedbackText(resp)
}

// asGoogleAPIError maps a Gemini API error onto googleapi.Error so the shared
// retry classification applies. Other errors pass through.
func asGoogleAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		gErr := &googleapi.Error{Code: apiErr.Code, Message: apiErr.Message}
		gErr.Wrap(err)
		return gErr
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		gErr := &googleapi.Error{Code: apiErrPtr.Code, Message: apiErrPtr.Message}
		gErr.Wrap(err)
		return gErr
	}
	return err
}

func (c *GeminiClient) feedbackText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason := string(resp.PromptFeedback.BlockReason)
			c.logger.Error("Gemini blocked the prompt", slog.String("block_reason", reason))
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrBlocked, reason)
		}
		return "", fmt.Errorf("failed to generate feedback: response was empty or blocked (no candidates)")
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}

	text := strings.TrimSpace(b.String())
	if text != "" {
		c.logger.Info("Generated Gemini feedback", slog.Int("chars", len(text)))
		return text, nil
	}

	if candidate.FinishReason == genai.FinishReasonSafety {
		ratings := formatRatings(candidate.SafetyRatings)
		c.logger.Error("Gemini stopped for safety", slog.String("ratings", ratings))
		return "", fmt.Errorf("%w: %s", ErrBlocked, ratings)
	}

	c.logger.Warn("Gemini returned empty feedback", slog.String("finish_reason", string(candidate.FinishReason)))
	return EmptyFeedbackText, nil
}

func safetySettings() []*genai.SafetySetting {
	settings := make([]*genai.SafetySetting, 0, len(harmCategories))
	for _, category := range harmCategories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

func formatRatings(ratings []*genai.SafetyRating) string {
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		if r != nil {
			parts = append(parts, string(r.Category)+"="+string(r.Probability))
		}
	}
	return strings.Join(parts, ", ")
}
