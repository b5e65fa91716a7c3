package feedback

import (
	"errors"
	"strings"
)

// Placeholder is replaced by the submission content when rendering a prompt.
const Placeholder = "{submission_content}"

// DefaultPromptTemplate asks for constructive, student-facing feedback.
const DefaultPromptTemplate = `You are a helpful teaching assistant providing feedback on a student's assignment submission.

Focus on being constructive, specific, and encouraging.

Review the following submission content:

` + "```" + `
{submission_content}
` + "```" + `

Provide personalized feedback for the student:`

// ErrInvalidTemplate is returned for prompt templates without Placeholder.
var ErrInvalidTemplate = errors.New("invalid prompt template: missing '{submission_content}' placeholder")

// ValidateTemplate checks that template contains Placeholder.
func ValidateTemplate(template string) error {
	if !strings.Contains(template, Placeholder) {
		return ErrInvalidTemplate
	}
	return nil
}

// RenderPrompt substitutes content for every Placeholder in template.
func RenderPrompt(template, content string) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}
	return strings.ReplaceAll(template, Placeholder, content), nil
}
