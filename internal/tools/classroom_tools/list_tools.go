package classroom_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/common"
)

// submissionSummary is the listing view of a submission. Attachments are
// described rather than fetched.
type submissionSummary struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"userId"`
	State        classroom.SubmissionState `json:"state"`
	Late         bool                      `json:"late,omitempty"`
	CurrentGrade *float64                  `json:"currentGrade,omitempty"`
	Attachments  []string                  `json:"attachments,omitempty"`
	// UsesMaterials is set when the student attached nothing and the
	// assignment materials stand in for the submission.
	UsesMaterials bool `json:"usesMaterials,omitempty"`
}

func summarizeSubmission(sub *classroom.Submission) submissionSummary {
	s := submissionSummary{
		ID:            sub.ID,
		UserID:        sub.UserID,
		State:         sub.State,
		Late:          sub.Late,
		CurrentGrade:  sub.CurrentGrade(),
		UsesMaterials: len(sub.Attachments) == 0 && len(sub.Materials) > 0,
	}
	for _, a := range sub.AllAttachments() {
		s.Attachments = append(s.Attachments, extract.Describe(a))
	}
	return s
}

func registerListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCoursesTool := mcp.NewTool(ToolListCourses,
		mcp.WithDescription("List the active Google Classroom courses taught by the account"),
		accountOption(),
	)
	s.AddTool(listCoursesTool, handler(ToolListCourses, sc, handleListCourses))

	listAssignmentsTool := mcp.NewTool(ToolListAssignments,
		mcp.WithDescription("List the assignments of a course, most recently updated first"),
		accountOption(),
		courseOption(),
	)
	s.AddTool(listAssignmentsTool, handler(ToolListAssignments, sc, handleListAssignments))

	listSubmissionsTool := mcp.NewTool(ToolListSubmissions,
		mcp.WithDescription("List student submissions of an assignment with their state, grade and attachments"),
		accountOption(),
		courseOption(),
		assignmentOption(),
	)
	s.AddTool(listSubmissionsTool, handler(ToolListSubmissions, sc, handleListSubmissions))

	return nil
}

func handleListCourses(ctx context.Context, _ map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	courses, err := svc.Classroom.ListCourses(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list courses: %v", err)), nil
	}
	if len(courses) == 0 {
		return mcp.NewToolResultText("No active courses found."), nil
	}
	return common.JSONResult(courses)
}

func handleListAssignments(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	courseID, err := common.RequiredString(args, "courseId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	assignments, err := svc.Classroom.ListAssignments(ctx, courseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list assignments: %v", err)), nil
	}
	if len(assignments) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No assignments found in course %s.", courseID)), nil
	}
	return common.JSONResult(assignments)
}

func handleListSubmissions(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	courseID, err := common.RequiredString(args, "courseId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	courseWorkID, err := common.RequiredString(args, "courseWorkId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	submissions, err := svc.Classroom.ListSubmissions(ctx, courseID, courseWorkID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list submissions: %v", err)), nil
	}

	summaries := make([]submissionSummary, 0, len(submissions))
	for i := range submissions {
		summaries = append(summaries, summarizeSubmission(&submissions[i]))
	}
	return common.JSONResult(summaries)
}
