package cmd

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCategory(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "classroom_list_courses", want: "Listing Tools"},
		{name: "classroom_extract_form", want: "Extraction Tools"},
		{name: "classroom_generate_feedback", want: "Feedback Tools"},
		{name: "classroom_patch_grade", want: "Grade Tools"},
		{name: "classroom_return_submission", want: "Grade Tools"},
		{name: "classroom", want: "Other"},
		{name: "gmail_send_email", want: "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toolCategory(tt.name))
		})
	}
}

func TestRenderToolsReference(t *testing.T) {
	mcpSrv, err := newMCPServer(newTestServerContext(t), false)
	require.NoError(t, err)

	var tools []mcp.Tool
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	markdown := renderToolsReference(tools)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "- [Extraction Tools](#extraction-tools)")
	assert.Contains(t, markdown, "### classroom_extract_submission")
	assert.Contains(t, markdown, "- `courseId` (required): The Classroom course ID")
	assert.Contains(t, markdown, "- `account` (optional): ")
	assert.Contains(t, markdown, "`--read-only`")
	assert.NotContains(t, markdown, "## Other")

	// Sections follow the listing, extraction, feedback, grade order.
	listing := strings.Index(markdown, "## Listing Tools")
	grade := strings.Index(markdown, "## Grade Tools")
	assert.Greater(t, grade, listing)
}

func TestRenderToolsReference_Uncategorized(t *testing.T) {
	markdown := renderToolsReference([]mcp.Tool{
		mcp.NewTool("ping", mcp.WithDescription("Health probe")),
	})

	assert.Contains(t, markdown, "- [Other](#other)")
	assert.Contains(t, markdown, "### ping\n\nHealth probe\n\n")
	assert.NotContains(t, markdown, "**Arguments:**")
}
