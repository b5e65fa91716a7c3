package classroom_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/common"
)

// Tool names.
const (
	ToolListCourses       = "classroom_list_courses"
	ToolListAssignments   = "classroom_list_assignments"
	ToolListSubmissions   = "classroom_list_submissions"
	ToolExtractSubmission = "classroom_extract_submission"
	ToolExtractDriveFile  = "classroom_extract_drive_file"
	ToolExtractForm       = "classroom_extract_form"
	ToolExtractLink       = "classroom_extract_link"
	ToolGenerateFeedback  = "classroom_generate_feedback"
	ToolPatchGrade        = "classroom_patch_grade"
	ToolReturnSubmission  = "classroom_return_submission"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: the configured account). Used to manage multiple Google accounts."),
	)
}

func courseOption() mcp.ToolOption {
	return mcp.WithString("courseId",
		mcp.Required(),
		mcp.Description("The Classroom course ID"),
	)
}

func assignmentOption() mcp.ToolOption {
	return mcp.WithString("courseWorkId",
		mcp.Required(),
		mcp.Description("The coursework (assignment) ID"),
	)
}

// getServices resolves the account argument to its service bundle.
func getServices(sc *server.ServerContext, args map[string]interface{}) (*server.Services, error) {
	account := common.GetAccountFromArgs(args, sc.DefaultAccount())
	return sc.ServicesForAccount(account)
}

// toolFunc implements a tool once its account services are resolved.
type toolFunc func(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error)

// handler wraps fn with account resolution and instrumentation.
func handler(name string, sc *server.ServerContext, fn toolFunc) mcpserver.ToolHandlerFunc {
	return common.InstrumentedToolHandler(name, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		svc, err := getServices(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return fn(ctx, args, svc)
	})
}

// RegisterClassroomTools registers all Classroom tools with the MCP server.
// Grade writes are only registered when readOnly is false.
func RegisterClassroomTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register list tools: %w", err)
	}
	if err := registerExtractTools(s, sc); err != nil {
		return fmt.Errorf("failed to register extract tools: %w", err)
	}
	if err := registerFeedbackTools(s, sc); err != nil {
		return fmt.Errorf("failed to register feedback tools: %w", err)
	}
	if !readOnly {
		if err := registerGradeTools(s, sc); err != nil {
			return fmt.Errorf("failed to register grade tools: %w", err)
		}
	}
	return nil
}
