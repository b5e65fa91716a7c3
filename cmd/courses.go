package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCoursesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List active courses",
		Long:  `List the active Google Classroom courses taught by the account. This is the default command.`,
		Args:  cobra.NoArgs,
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
			courses, err := svc.Classroom.ListCourses(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, courses)
			}
			if len(courses) == 0 {
				fmt.Fprintln(out, "No active courses found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSECTION")
			for _, c := range courses {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Section)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")

	return cmd
}

func newAssignmentsCmd() *cobra.Command {
	var (
		courseID   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "List the assignments of a course",
		Args:  cobra.NoArgs,
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
			assignments, err := svc.Classroom.ListAssignments(ctx, courseID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, assignments)
			}
			if len(assignments) == 0 {
				fmt.Fprintf(out, "No assignments found in course %s.\n", courseID)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tMAX POINTS\tDUE")
			for _, as := range assignments {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", as.ID, as.Title, as.MaxPoints, as.DueDate)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("course")

	return cmd
}
