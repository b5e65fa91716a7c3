// Package feedback generates and cleans up AI feedback for student submissions.
//
// GeminiClient implements Generator on top of the Gemini generateContent
// API. The prompt is built from a template containing the
// {submission_content} placeholder, and the four harm categories are
// blocked at medium probability and above.
//
// Sanitize strips placeholders, greetings and assignment references from
// feedback before it is emailed to a student.
package feedback
