package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/config"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
)

func newServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Retry.MaxAttempts = 1
	cfg.Feedback.APIKey = "key"

	sc, err := server.NewServerContext(context.Background(), server.Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decodeContents(t *testing.T, contents []mcp.ResourceContents) map[string]interface{} {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	return data
}

func TestHandleAccount(t *testing.T) {
	sc := newServerContext(t)

	contents, err := handleAccount(context.Background(), readRequest(AccountURI), sc)
	require.NoError(t, err)

	data := decodeContents(t, contents)
	assert.Equal(t, config.DefaultAccount, data["account"])
	assert.Equal(t, false, data["authenticated"])
	assert.Equal(t, true, data["feedbackEnabled"])
	assert.Equal(t, false, data["emailEnabled"])
}

func TestHandleCourses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/courses" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"courses":[{"id":"c1","name":"Physics","courseState":"ACTIVE"}]}`))
	}))
	defer srv.Close()

	sc := newServerContext(t)
	svc, err := sc.NewServices(context.Background(), sc.DefaultAccount(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	sc.SetServices(sc.DefaultAccount(), svc)

	contents, err := handleCourses(context.Background(), readRequest(CoursesURI), sc)
	require.NoError(t, err)

	data := decodeContents(t, contents)
	courses, ok := data["courses"].([]interface{})
	require.True(t, ok)
	require.Len(t, courses, 1)
	assert.Equal(t, "Physics", courses[0].(map[string]interface{})["name"])
}

func TestHandleCourses_NotAuthenticated(t *testing.T) {
	sc := newServerContext(t)

	_, err := handleCourses(context.Background(), readRequest(CoursesURI), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth --account default")
}
