package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
)

func para(text string) *docs.StructuralElement {
	return &docs.StructuralElement{Paragraph: &docs.Paragraph{
		Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: text}}},
	}}
}

func bullet(text string, level int64) *docs.StructuralElement {
	el := para(text)
	el.Paragraph.Bullet = &docs.Bullet{NestingLevel: level}
	return el
}

func table(rows ...[]string) *docs.StructuralElement {
	t := &docs.Table{}
	for _, r := range rows {
		row := &docs.TableRow{}
		for _, c := range r {
			row.TableCells = append(row.TableCells, &docs.TableCell{Content: []*docs.StructuralElement{para(c + "\n")}})
		}
		t.TableRows = append(t.TableRows, row)
	}
	return &docs.StructuralElement{Table: t}
}

func TestDocumentToPlainText(t *testing.T) {
	tests := []struct {
		name    string
		doc     *docs.Document
		want    string
		wantErr bool
	}{
		{name: "nil document", doc: nil, wantErr: true},
		{name: "empty document", doc: &docs.Document{Title: "Empty"}, want: ""},
		{
			name: "legacy body",
			doc: &docs.Document{
				Title: "Essay",
				Body: &docs.Body{Content: []*docs.StructuralElement{
					para("Intro\n"),
					bullet("point\n", 0),
					bullet("nested\n", 1),
					table([]string{"A", "B"}, []string{"1", "2 two"}),
					para("End\n"),
				}},
			},
			want: "Intro\n- point\n  - nested\nA | B\n1 | 2 two\n\nEnd",
		},
		{
			name: "single tab has no heading",
			doc: &docs.Document{Tabs: []*docs.Tab{{
				TabProperties: &docs.TabProperties{Title: "Tab 1"},
				DocumentTab:   &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{para("Only tab\n")}}},
			}}},
			want: "Only tab",
		},
		{
			name: "multiple tabs with child tab",
			doc: &docs.Document{Tabs: []*docs.Tab{
				{
					TabProperties: &docs.TabProperties{Title: "Draft"},
					DocumentTab:   &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{para("first\n")}}},
					ChildTabs: []*docs.Tab{{
						TabProperties: &docs.TabProperties{Title: "Notes"},
						DocumentTab:   &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{para("child\n")}}},
					}},
				},
				{
					DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{para("second\n")}}},
				},
			}},
			want: "=== Draft ===\n\nfirst\n\n=== Notes ===\n\nchild\n\n=== Tab 2 ===\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DocumentToPlainText(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDocumentID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://docs.google.com/document/d/1AbC-xyz_9/edit", "1AbC-xyz_9"},
		{"https://docs.google.com/document/d/abc", "abc"},
		{"https://docs.google.com/document/u/1/d/abc/edit?usp=sharing", "abc"},
		{"https://docs.google.com/spreadsheets/d/abc/edit", ""},
		{"https://drive.google.com/file/d/abc/view", ""},
		{"https://example.com/document/d/abc", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDocumentID(tt.url))
		})
	}
}

func TestClient_GetPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/d1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		assert.Equal(t, "true", r.URL.Query().Get("includeTabsContent"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&docs.Document{
			DocumentId: "d1",
			Body:       &docs.Body{Content: []*docs.StructuralElement{para("Linked essay\n")}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), google.APIOptions{},
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	text, err := c.GetPlainText(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "Linked essay", text)

	_, err = c.GetPlainText(context.Background(), "missing")
	assert.Error(t, err)
	_, err = c.GetPlainText(context.Background(), "")
	assert.Error(t, err)
}
