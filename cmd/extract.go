package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
)

func newExtractCmd() *cobra.Command {
	var (
		courseID     string
		courseWorkID string
		submissionID string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the text content of submissions",
		Long: `Run the extraction pipeline over the submissions of an assignment and print
the extracted content, or the extraction error, of each one.

Drive files are downloaded or exported, Forms responses are rendered as a
question and answer transcript, and linked Google Docs are read as plain text.
Submissions without student attachments fall back to the assignment materials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			svc, err := a.services(ctx)
			if err != nil {
				return err
			}

			results, err := extractSubmissions(ctx, svc, courseID, courseWorkID, submissionID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			writeExtractResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (required)")
	cmd.Flags().StringVar(&courseWorkID, "assignment", "", "Assignment (coursework) ID (required)")
	cmd.Flags().StringVar(&submissionID, "submission", "", "Only extract this submission")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

// extractSubmissions extracts one submission, or all of them when
// submissionID is empty. Per-submission failures are reported in the results.
func extractSubmissions(ctx context.Context, svc *server.Services, courseID, courseWorkID, submissionID string) ([]extractResult, error) {
	var submissions []classroom.Submission
	if submissionID != "" {
		sub, err := svc.Classroom.GetSubmission(ctx, courseID, courseWorkID, submissionID)
		if err != nil {
			return nil, err
		}
		submissions = []classroom.Submission{*sub}
	} else {
		var err error
		submissions, err = svc.Classroom.ListSubmissions(ctx, courseID, courseWorkID)
		if err != nil {
			return nil, err
		}
	}

	names := svc.Grader.NewNameCache()
	results := make([]extractResult, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		email := names.Email(ctx, sub.UserID)
		res := extractResult{
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			StudentEmail: email,
			State:        string(sub.State),
		}
		content, err := svc.Extractor.ExtractContent(ctx, sub, email)
		if err != nil {
			res.Error = err.Error()
			res.ErrorKind = extract.KindOf(err).String()
		} else {
			res.Content = content
		}
		results = append(results, res)
	}
	return results, nil
}
