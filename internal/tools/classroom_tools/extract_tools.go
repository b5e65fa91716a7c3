package classroom_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/batch"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/common"
)

func registerExtractTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	extractSubmissionTool := mcp.NewTool(ToolExtractSubmission,
		mcp.WithDescription("Extract the text content of one or more submissions from their Drive files, Forms and linked Docs. "+
			"Submissions without student attachments fall back to the assignment materials."),
		accountOption(),
		courseOption(),
		assignmentOption(),
		mcp.WithString("submissionIds",
			mcp.Required(),
			mcp.Description("Submission ID (string) or array of submission IDs"),
		),
	)
	s.AddTool(extractSubmissionTool, handler(ToolExtractSubmission, sc, handleExtractSubmissions))

	extractDriveFileTool := mcp.NewTool(ToolExtractDriveFile,
		mcp.WithDescription("Extract the text content of a Drive file. Google Docs, Sheets and Slides are exported to text."),
		accountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The Drive file ID"),
		),
		mcp.WithString("title",
			mcp.Description("Display title used in error messages"),
		),
	)
	s.AddTool(extractDriveFileTool, handler(ToolExtractDriveFile, sc, handleExtractDriveFile))

	extractFormTool := mcp.NewTool(ToolExtractForm,
		mcp.WithDescription("Render the responses of a Google Form as a question and answer transcript. "+
			"Responses are matched by respondent email, then by response ID, else all responses are returned."),
		accountOption(),
		mcp.WithString("formUrl",
			mcp.Required(),
			mcp.Description("The form URL, e.g. https://docs.google.com/forms/d/<id>/edit"),
		),
		mcp.WithString("responseUrl",
			mcp.Description("The response URL of the student's response, if known"),
		),
		mcp.WithString("studentEmail",
			mcp.Description("Email of the respondent to match"),
		),
		mcp.WithString("title",
			mcp.Description("Display title used in error messages"),
		),
	)
	s.AddTool(extractFormTool, handler(ToolExtractForm, sc, handleExtractForm))

	extractLinkTool := mcp.NewTool(ToolExtractLink,
		mcp.WithDescription("Extract the plain text of a linked Google Doc. Other links are not supported."),
		accountOption(),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The link URL"),
		),
		mcp.WithString("title",
			mcp.Description("Display title used in error messages"),
		),
	)
	s.AddTool(extractLinkTool, handler(ToolExtractLink, sc, handleExtractLink))

	return nil
}

func handleExtractSubmissions(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	courseID, err := common.RequiredString(args, "courseId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	courseWorkID, err := common.RequiredString(args, "courseWorkId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := batch.ParseStringOrArray(args["submissionIds"], "submissionIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names := svc.Grader.NewNameCache()
	results := batch.ProcessBatch(ctx, ids, func(ctx context.Context, id string) (string, error) {
		sub, err := svc.Classroom.GetSubmission(ctx, courseID, courseWorkID, id)
		if err != nil {
			return "", err
		}
		return svc.Extractor.ExtractContent(ctx, sub, names.Email(ctx, sub.UserID))
	}, extractionKind)
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleExtractDriveFile(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	fileID, err := common.RequiredString(args, "fileId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a := classroom.Attachment{DriveFile: &classroom.DriveFileRef{ID: fileID, Title: common.OptionalString(args, "title")}}
	return extractAttachment(ctx, svc, a, "")
}

func handleExtractForm(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	formURL, err := common.RequiredString(args, "formUrl")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a := classroom.Attachment{Form: &classroom.FormRef{
		FormURL:     formURL,
		ResponseURL: common.OptionalString(args, "responseUrl"),
		Title:       common.OptionalString(args, "title"),
	}}
	return extractAttachment(ctx, svc, a, common.OptionalString(args, "studentEmail"))
}

func handleExtractLink(ctx context.Context, args map[string]interface{}, svc *server.Services) (*mcp.CallToolResult, error) {
	url, err := common.RequiredString(args, "url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a := classroom.Attachment{Link: &classroom.LinkRef{URL: url, Title: common.OptionalString(args, "title")}}
	return extractAttachment(ctx, svc, a, "")
}

func extractAttachment(ctx context.Context, svc *server.Services, a classroom.Attachment, studentEmail string) (*mcp.CallToolResult, error) {
	text, err := svc.Extractor.ExtractAttachment(ctx, a, studentEmail)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Extraction failed (%s): %v", extract.KindOf(err), err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// extractionKind reports the kind of extraction failures. Submission lookup
// errors carry no kind.
func extractionKind(err error) string {
	var single *extract.Error
	var agg *extract.AggregateError
	if errors.As(err, &single) || errors.As(err, &agg) {
		return extract.KindOf(err).String()
	}
	return ""
}
