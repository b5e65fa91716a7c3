package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
)

// Resource URIs.
const (
	CoursesURI = "classroom://courses"
	AccountURI = "classroom://account"
)

// RegisterClassroomResources registers resources for the default account.
func RegisterClassroomResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	coursesResource := mcp.NewResource(
		CoursesURI,
		"Active Courses",
		mcp.WithResourceDescription("Active Google Classroom courses taught by the default account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(coursesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCourses(ctx, request, sc)
	})

	accountResource := mcp.NewResource(
		AccountURI,
		"Grader Account",
		mcp.WithResourceDescription("The default Google account and which grading features are configured for it"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(accountResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccount(ctx, request, sc)
	})

	return nil
}

func handleCourses(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := sc.DefaultAccount()
	svc, err := sc.ServicesForAccount(account)
	if err != nil {
		return nil, err
	}

	courses, err := svc.Classroom.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"account": account,
		"courses": courses,
	})
}

func handleAccount(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := sc.DefaultAccount()
	cfg := sc.Config()

	return jsonContents(request.Params.URI, map[string]interface{}{
		"account":          account,
		"authenticated":    sc.HasCredentials(account),
		"feedbackEnabled":  cfg.Feedback.Enabled(),
		"feedbackModel":    cfg.Feedback.Model,
		"emailEnabled":     cfg.Email.Enabled,
		"convertDocuments": cfg.Extract.ConvertDocuments,
		"maxDownloadBytes": cfg.Extract.MaxDownloadBytes,
	})
}

func jsonContents(uri string, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
