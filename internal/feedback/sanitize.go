package feedback

import (
	"regexp"
	"strings"
)

var (
	namePlaceholder = regexp.MustCompile(`(?i)\[ ?Student(Name)? ?\]`)
	greetingLine    = regexp.MustCompile(`(?im)^\s*(hi|hello|dear)[^\n]*[\n\r]+`)
)

// genericAssignmentTerms are removed from emailed feedback along with the
// assignment title, since the email subject already names the assignment.
var genericAssignmentTerms = []string{"assignment", "homework", "task", "project"}

// Sanitize prepares generated feedback for an email that carries its own
// greeting: it removes student name placeholders, greeting lines, and lines
// that mention the assignment. A line is only removed when a line break
// follows it, so the last line always survives.
func Sanitize(feedback, assignmentTitle string) string {
	clean := namePlaceholder.ReplaceAllString(feedback, "")
	clean = greetingLine.ReplaceAllString(clean, "")

	terms := make([]string, 0, len(genericAssignmentTerms)+1)
	if title := strings.TrimSpace(assignmentTitle); title != "" {
		terms = append(terms, regexp.QuoteMeta(title))
	}
	terms = append(terms, genericAssignmentTerms...)
	assignmentLine := regexp.MustCompile(`(?im)^(.*(` + strings.Join(terms, "|") + `).*)[\n\r]+`)
	clean = assignmentLine.ReplaceAllString(clean, "")

	return strings.TrimSpace(clean)
}
