package classroom_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/common"
)

func registerGradeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	patchGradeTool := mcp.NewTool(ToolPatchGrade,
		mcp.WithDescription("Set the assigned and draft grade of a submission. The write is recorded in the audit log."),
		accountOption(),
		courseOption(),
		assignmentOption(),
		mcp.WithString("submissionId",
			mcp.Required(),
			mcp.Description("The submission ID"),
		),
		mcp.WithNumber("grade",
			mcp.Required(),
			mcp.Description("The grade to assign"),
		),
	)
	s.AddTool(patchGradeTool, handler(ToolPatchGrade, sc, handlePatchGrade))

	returnSubmissionTool := mcp.NewTool(ToolReturnSubmission,
		mcp.WithDescription("Return a submission to the student. The write is recorded in the audit log."),
		accountOption(),
		courseOption(),
		assignmentOption(),
		mcp.WithString("submissionId",
			mcp.Required(),
			mcp.Description("The submission ID"),
		),
	)
	s.AddTool(returnSubmissionTool, handler(ToolReturnSubmission, sc, handleReturnSubmission))

	return nil
}

type submissionRef struct {
	courseID     string
	courseWorkID string
	submissionID string
}

func submissionArgs(args map[string]interface{}) (submissionRef, error) {
	var ref submissionRef
	var err error
	if ref.courseID, err = common.RequiredString(args, "courseId"); err != nil {
		return ref, err
	}
	if ref.courseWorkID, err = common.RequiredString(args, "courseWorkId"); err != nil {
		return ref, err
	}
	if ref.submissionID, err = common.RequiredString(args, "submissionId"); err != nil {
		return ref, err
	}
	return ref, nil
}

func handlePatchGrade(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	ref, err := submissionArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	grade, ok := common.OptionalNumber(args, "grade")
	if !ok {
		return mcp.NewToolResultError("grade is required"), nil
	}
	if grade < 0 {
		return mcp.NewToolResultError("grade must not be negative"), nil
	}

	email := studentEmail(ctx, svc, ref)
	if err := svc.Grader.WriteGrade(ctx, ref.courseID, ref.courseWorkID, ref.submissionID, email, grade); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set grade: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Grade %g set on submission %s.", grade, ref.submissionID)), nil
}

func handleReturnSubmission(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	ref, err := submissionArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email := studentEmail(ctx, svc, ref)
	if err := svc.Grader.Return(ctx, ref.courseID, ref.courseWorkID, ref.submissionID, email); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to return submission: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Submission %s returned.", ref.submissionID)), nil
}

// studentEmail resolves the submitting student for the audit log. Lookup
// failures leave it empty.
func studentEmail(ctx context.Context, svc *server.Services, ref submissionRef) string {
	sub, err := svc.Classroom.GetSubmission(ctx, ref.courseID, ref.courseWorkID, ref.submissionID)
	if err != nil {
		return ""
	}
	return svc.Grader.NewNameCache().Email(ctx, sub.UserID)
}
