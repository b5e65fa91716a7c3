package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/FreeMarketamilitia/classroom-grader/internal/grader"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// extractResult is the outcome of extracting one submission.
type extractResult struct {
	SubmissionID string `json:"submissionId"`
	UserID       string `json:"userId"`
	StudentEmail string `json:"studentEmail,omitempty"`
	State        string `json:"state"`
	Content      string `json:"content,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorKind    string `json:"errorKind,omitempty"`
}

func writeExtractResults(w io.Writer, results []extractResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		who := res.StudentEmail
		if who == "" {
			who = res.UserID
		}
		fmt.Fprintf(w, "=== Submission %s (%s) [%s] ===\n", res.SubmissionID, who, res.State)
		if res.Error != "" {
			fmt.Fprintf(w, "ERROR (%s): %s\n", res.ErrorKind, res.Error)
			continue
		}
		fmt.Fprintln(w, res.Content)
	}
}

func writeProcessed(w io.Writer, results []grader.Processed) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		who := res.StudentName
		if who == "" {
			who = res.UserID
		}
		fmt.Fprintf(w, "=== %s: %s [%s] ===\n", who, res.SubmissionID, res.Status)
		if res.Message != "" {
			fmt.Fprintln(w, res.Message)
		}
		if res.Feedback != "" {
			fmt.Fprintf(w, "Grade: %g\n", grader.ResolveGrade(res))
			fmt.Fprintln(w, res.Feedback)
		}
	}
}

// confirm asks a yes/no question and reports whether the answer was yes.
// Pass the same *bufio.Reader for consecutive questions.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
