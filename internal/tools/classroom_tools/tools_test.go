package classroom_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/config"
	"github.com/FreeMarketamilitia/classroom-grader/internal/grader"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/batch"
)

// fakeClassroom serves canned Classroom, Drive and Docs responses and
// records the non-GET requests it receives.
type fakeClassroom struct {
	mu     sync.Mutex
	routes map[string]any
	writes []string
}

func (f *fakeClassroom) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method != http.MethodGet {
		f.writes = append(f.writes, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
		return
	}

	key := r.URL.Path
	if r.URL.Query().Get("alt") == "media" {
		key += "?media"
	}
	body, ok := f.routes[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		return
	}
	if raw, ok := body.(string); ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeClassroom) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func defaultRoutes() map[string]any {
	return map[string]any{
		"/v1/courses": map[string]any{
			"courses": []map[string]any{{"id": "c1", "name": "Algebra", "courseState": "ACTIVE"}},
		},
		"/v1/courses/c1/courseWork": map[string]any{
			"courseWork": []map[string]any{{"id": "cw1", "courseId": "c1", "title": "Essay"}},
		},
		"/v1/courses/c1/courseWork/cw1": map[string]any{
			"id": "cw1", "courseId": "c1", "title": "Essay",
		},
		"/v1/courses/c1/courseWork/cw1/studentSubmissions": map[string]any{
			"studentSubmissions": []map[string]any{submissionJSON("s1", "f1"), submissionJSON("s2", "missing")},
		},
		"/v1/courses/c1/courseWork/cw1/studentSubmissions/s1": submissionJSON("s1", "f1"),
		"/v1/courses/c1/courseWork/cw1/studentSubmissions/s2": submissionJSON("s2", "missing"),
		"/v1/userProfiles/u1": map[string]any{
			"id":           "u1",
			"emailAddress": "ada@school.example",
			"name":         map[string]any{"fullName": "Ada Lovelace"},
		},
		"/files/f1":       map[string]any{"id": "f1", "name": "essay.txt", "mimeType": "text/plain"},
		"/files/f1?media": "Difference engines tabulate polynomials.",
	}
}

func submissionJSON(id, fileID string) map[string]any {
	return map[string]any{
		"id": id, "userId": "u1", "courseId": "c1", "courseWorkId": "cw1",
		"state": "TURNED_IN",
		"assignmentSubmission": map[string]any{
			"attachments": []map[string]any{
				{"driveFile": map[string]any{"id": fileID, "title": "essay.txt"}},
			},
		},
	}
}

type testEnv struct {
	server *mcpserver.MCPServer
	google *fakeClassroom
}

func newTestEnv(t *testing.T, readOnly bool) *testEnv {
	t.Helper()
	google := &fakeClassroom{routes: defaultRoutes()}
	srv := httptest.NewServer(google)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Retry.MaxAttempts = 1

	sc, err := server.NewServerContext(context.Background(), server.Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	svc, err := sc.NewServices(context.Background(), sc.DefaultAccount(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	sc.SetServices(sc.DefaultAccount(), svc)

	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterClassroomTools(s, sc, readOnly))
	return &testEnv{server: s, google: google}
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool, ok := e.server.ListTools()[name]
	require.True(t, ok, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestRegisterClassroomTools(t *testing.T) {
	tests := []struct {
		name     string
		readOnly bool
		want     []string
	}{
		{
			name:     "read only",
			readOnly: true,
			want: []string{
				ToolExtractDriveFile, ToolExtractForm, ToolExtractLink, ToolExtractSubmission,
				ToolGenerateFeedback, ToolListAssignments, ToolListCourses, ToolListSubmissions,
			},
		},
		{
			name:     "with grade writes",
			readOnly: false,
			want: []string{
				ToolExtractDriveFile, ToolExtractForm, ToolExtractLink, ToolExtractSubmission,
				ToolGenerateFeedback, ToolListAssignments, ToolListCourses, ToolListSubmissions,
				ToolPatchGrade, ToolReturnSubmission,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.readOnly)
			var names []string
			for name := range env.server.ListTools() {
				names = append(names, name)
			}
			sort.Strings(names)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestListTools(t *testing.T) {
	env := newTestEnv(t, true)

	courses := resultText(t, env.call(t, ToolListCourses, map[string]any{}))
	assert.Contains(t, courses, "Algebra")

	assignments := resultText(t, env.call(t, ToolListAssignments, map[string]any{"courseId": "c1"}))
	assert.Contains(t, assignments, "Essay")

	res := env.call(t, ToolListSubmissions, map[string]any{"courseId": "c1", "courseWorkId": "cw1"})
	var summaries []submissionSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "s1", summaries[0].ID)
	assert.Equal(t, []string{"drive_file 'essay.txt' (f1)"}, summaries[0].Attachments)
	assert.False(t, summaries[0].UsesMaterials)
}

func TestListAssignments_MissingCourse(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.call(t, ToolListAssignments, map[string]any{})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "courseId is required")
}

func TestExtractSubmissions(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.call(t, ToolExtractSubmission, map[string]any{
		"courseId":      "c1",
		"courseWorkId":  "cw1",
		"submissionIds": []interface{}{"s1", "s2"},
	})
	require.False(t, res.IsError)

	var out batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 1, out.Successful)
	assert.Equal(t, 1, out.Failed)

	assert.Equal(t, batch.StatusSuccess, out.Results[0].Status)
	assert.Contains(t, out.Results[0].Result, "Difference engines tabulate polynomials.")

	assert.Equal(t, batch.StatusError, out.Results[1].Status)
	assert.Equal(t, "not_found", out.Results[1].ErrorKind)
}

func TestExtractDriveFile(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.call(t, ToolExtractDriveFile, map[string]any{"fileId": "f1"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Difference engines tabulate polynomials.")

	res = env.call(t, ToolExtractDriveFile, map[string]any{"fileId": "gone", "title": "lost.txt"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not_found")
}

func TestExtractLink_Unsupported(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.call(t, ToolExtractLink, map[string]any{"url": "https://example.com/page"})
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, res), "Extraction failed"))
}

func TestGenerateFeedback_WithoutGenerator(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.call(t, ToolGenerateFeedback, map[string]any{
		"courseId":     "c1",
		"courseWorkId": "cw1",
		"submissionId": "s1",
	})
	require.False(t, res.IsError)

	var processed grader.Processed
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &processed))
	assert.Equal(t, grader.StatusFeedbackSkipped, processed.Status)
	assert.Equal(t, "Essay", processed.AssignmentTitle)
	assert.Equal(t, "ada@school.example", processed.StudentEmail)
	assert.Contains(t, processed.Content, "Difference engines")
}

func TestGradeTools(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.call(t, ToolPatchGrade, map[string]any{
		"courseId":     "c1",
		"courseWorkId": "cw1",
		"submissionId": "s1",
		"grade":        float64(92),
	})
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Grade 92 set")

	res = env.call(t, ToolReturnSubmission, map[string]any{
		"courseId":     "c1",
		"courseWorkId": "cw1",
		"submissionId": "s1",
	})
	require.False(t, res.IsError, resultText(t, res))

	assert.Equal(t, []string{
		"PATCH /v1/courses/c1/courseWork/cw1/studentSubmissions/s1",
		"POST /v1/courses/c1/courseWork/cw1/studentSubmissions/s1:return",
	}, env.google.Writes())
}

func TestPatchGrade_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "missing grade",
			args:    map[string]any{"courseId": "c1", "courseWorkId": "cw1", "submissionId": "s1"},
			wantErr: "grade is required",
		},
		{
			name:    "negative grade",
			args:    map[string]any{"courseId": "c1", "courseWorkId": "cw1", "submissionId": "s1", "grade": float64(-1)},
			wantErr: "must not be negative",
		},
		{
			name:    "missing submission",
			args:    map[string]any{"courseId": "c1", "courseWorkId": "cw1", "grade": float64(10)},
			wantErr: "submissionId is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.call(t, ToolPatchGrade, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.wantErr)
		})
	}
	assert.Empty(t, env.google.Writes())
}
