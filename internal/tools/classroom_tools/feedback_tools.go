package classroom_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/common"
)

func registerFeedbackTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	generateFeedbackTool := mcp.NewTool(ToolGenerateFeedback,
		mcp.WithDescription("Extract a submission and generate AI feedback for it. Nothing is written to Classroom. "+
			"The result carries the extracted content, the feedback and the processing status."),
		accountOption(),
		courseOption(),
		assignmentOption(),
		mcp.WithString("submissionId",
			mcp.Required(),
			mcp.Description("The submission ID"),
		),
		mcp.WithString("includeContent",
			mcp.Description("Set to 'false' to omit the extracted content from the result"),
		),
	)
	s.AddTool(generateFeedbackTool, handler(ToolGenerateFeedback, sc, handleGenerateFeedback))

	return nil
}

func handleGenerateFeedback(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	courseID, err := common.RequiredString(args, "courseId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	courseWorkID, err := common.RequiredString(args, "courseWorkId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	submissionID, err := common.RequiredString(args, "submissionId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.Grader.ProcessSubmission(ctx, courseID, courseWorkID, submissionID, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get submission: %v", err)), nil
	}
	if res.Feedback != "" {
		res.Feedback = feedback.Sanitize(res.Feedback, res.AssignmentTitle)
	}
	if common.OptionalString(args, "includeContent") == "false" {
		res.Content = ""
	}
	return common.JSONResult(res)
}
