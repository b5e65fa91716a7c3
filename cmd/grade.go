package cmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FreeMarketamilitia/classroom-grader/internal/grader"
)

func newGradeCmd() *cobra.Command {
	var (
		courseID     string
		courseWorkID string
		applyGrades  bool
		returnWork   bool
		sendEmail    bool
		yes          bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Extract submissions and draft AI feedback",
		Long: `Extract every submission of an assignment and draft AI feedback for it.

Nothing is written to Classroom unless asked:
  --apply-grades  write the grade of each submission with feedback
  --return        return those submissions to the students
  --email         email the feedback to each student through Gmail

Write actions ask for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if sendEmail {
				a.cfg.Email.Enabled = true
			}
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}

			names := svc.Grader.NewNameCache()
			results, err := svc.Grader.ProcessAssignment(ctx, courseID, courseWorkID, names)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			if jsonOutput {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			} else {
				writeProcessed(out, results)
			}

			if applyGrades || returnWork {
				question := fmt.Sprintf("Apply grades and actions to %d submissions of %s?", countOK(results), courseWorkID)
				if yes || confirm(in, cmd.ErrOrStderr(), question) {
					summary := svc.Grader.ApplyGrades(ctx, courseID, courseWorkID, results, grader.ApplyOptions{
						Grades: applyGrades,
						Return: returnWork,
					})
					fmt.Fprintf(cmd.ErrOrStderr(), "Grades patched: %d, returned: %d, skipped: %d, failed: %d\n",
						summary.Patched, summary.Returned, summary.Skipped, summary.Failed)
				}
			}

			if sendEmail {
				if yes || confirm(in, cmd.ErrOrStderr(), "Email feedback to students?") {
					summary, err := svc.Grader.EmailFeedback(ctx, results, names)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Emails sent: %d, skipped: %d, failed: %d\n",
						summary.Sent, summary.Skipped, summary.Failed)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (required)")
	cmd.Flags().StringVar(&courseWorkID, "assignment", "", "Assignment (coursework) ID (required)")
	cmd.Flags().BoolVar(&applyGrades, "apply-grades", false, "Write grades to Classroom")
	cmd.Flags().BoolVar(&returnWork, "return", false, "Return graded submissions to students")
	cmd.Flags().BoolVar(&sendEmail, "email", false, "Email feedback to students")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("assignment")

	return cmd
}

func countOK(results []grader.Processed) int {
	n := 0
	for _, res := range results {
		if res.Status == grader.StatusOK {
			n++
		}
	}
	return n
}
