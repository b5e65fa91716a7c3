package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/googleapi"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
)

func TestDriveExtractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		content  []byte
		wantText string
		wantKind ErrorKind
		wantMsg  string
		wantCall string
	}{
		{
			name:     "plain text",
			mimeType: "text/plain",
			content:  []byte("Hello world"),
			wantText: "Hello world",
			wantCall: "download:f1",
		},
		{
			name:     "utf-8 bom stripped",
			mimeType: "text/plain; charset=utf-8",
			content:  []byte("\xef\xbb\xbfHi"),
			wantText: "Hi",
			wantCall: "download:f1",
		},
		{
			name:     "latin-1 fallback",
			mimeType: "text/csv",
			content:  []byte{'c', 'a', 'f', 0xe9},
			wantText: "café",
			wantCall: "download:f1",
		},
		{
			name:     "json is textual",
			mimeType: "application/json",
			content:  []byte(`{"a":1}`),
			wantText: `{"a":1}`,
			wantCall: "download:f1",
		},
		{
			name:     "undecodable text",
			mimeType: "text/plain",
			content:  []byte{0xff, 0x00, 0xfe},
			wantKind: KindDecodeFailure,
			wantMsg:  "Could not decode file 'essay' as text.",
		},
		{
			name:     "image is rejected",
			mimeType: "image/png",
			content:  []byte{0x89, 'P', 'N', 'G'},
			wantKind: KindUnsupportedType,
			wantMsg:  "File 'essay' is not a text-based document.",
		},
		{
			name:     "empty payload",
			mimeType: "text/plain",
			content:  []byte{},
			wantKind: KindEmptyContent,
			wantMsg:  "File 'essay' is empty.",
		},
		{
			name:     "whitespace only",
			mimeType: "text/plain",
			content:  []byte(" \n\t "),
			wantKind: KindEmptyContent,
			wantMsg:  "File 'essay' is empty.",
		},
		{
			name:     "google doc exported as text",
			mimeType: drive.MimeTypeDocument,
			content:  []byte("Doc body"),
			wantText: "Doc body",
			wantCall: "export:f1:text/plain",
		},
		{
			name:     "google sheet exported as csv",
			mimeType: drive.MimeTypeSpreadsheet,
			content:  []byte("a,b\n1,2"),
			wantText: "a,b\n1,2",
			wantCall: "export:f1:text/csv",
		},
		{
			name:     "google slides exported as text",
			mimeType: drive.MimeTypePresentation,
			content:  []byte("Slide 1"),
			wantText: "Slide 1",
			wantCall: "export:f1:text/plain",
		},
		{
			name:     "google drawing has no export",
			mimeType: "application/vnd.google-apps.drawing",
			wantKind: KindUnsupportedType,
			wantMsg:  "unsupported Google Workspace type for direct download: application/vnd.google-apps.drawing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := newFakeFiles().add("f1", "essay", tt.mimeType, tt.content)
			e := NewDriveExtractor(files, false, nil)

			text, err := e.Extract(context.Background(), classroom.DriveFileRef{ID: "f1", Title: "essay"})
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Empty(t, text)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.Contains(t, err.Error(), tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
			assert.Contains(t, files.calls, tt.wantCall)
		})
	}
}

func TestDriveExtractor_WorkspaceExportedNeverDownloaded(t *testing.T) {
	files := newFakeFiles().
		add("doc", "Doc", drive.MimeTypeDocument, []byte("x")).
		add("txt", "Txt", "text/plain", []byte("y"))
	e := NewDriveExtractor(files, false, nil)

	_, err := e.Extract(context.Background(), classroom.DriveFileRef{ID: "doc"})
	require.NoError(t, err)
	_, err = e.Extract(context.Background(), classroom.DriveFileRef{ID: "txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get:doc", "export:doc:text/plain", "get:txt", "download:txt"}, files.calls)
}

func TestDriveExtractor_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:     "not found",
			err:      &googleapi.Error{Code: http.StatusNotFound, Message: "File not found"},
			wantKind: KindNotFound,
			wantMsg:  "Error accessing Drive file 'essay'",
		},
		{
			name:     "permission denied",
			err:      &googleapi.Error{Code: http.StatusForbidden, Message: "insufficient permissions"},
			wantKind: KindPermissionDenied,
			wantMsg:  "Error accessing Drive file 'essay'",
		},
		{
			name: "rate limited 403 is transient",
			err: &googleapi.Error{
				Code:   http.StatusForbidden,
				Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
			},
			wantKind: KindTransient,
			wantMsg:  "Error accessing Drive file 'essay'",
		},
		{
			name:     "server error",
			err:      &googleapi.Error{Code: http.StatusServiceUnavailable},
			wantKind: KindTransient,
			wantMsg:  "Error accessing Drive file 'essay'",
		},
		{
			name:     "other error",
			err:      errors.New("boom"),
			wantKind: KindUnexpected,
			wantMsg:  "Unexpected error with Drive file 'essay': boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := newFakeFiles()
			files.errs["f1"] = tt.err
			e := NewDriveExtractor(files, false, nil)

			text, err := e.Extract(context.Background(), classroom.DriveFileRef{ID: "f1", Title: "essay"})
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDriveExtractor_UntitledAndMissingID(t *testing.T) {
	files := newFakeFiles().add("f1", "", "image/png", []byte{1})
	e := NewDriveExtractor(files, false, nil)

	_, err := e.Extract(context.Background(), classroom.DriveFileRef{ID: "f1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File 'Untitled Drive File' is not a text-based document.")

	_, err = e.Extract(context.Background(), classroom.DriveFileRef{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, KindStructuralMismatch, KindOf(err))
}

func TestDriveExtractor_ConvertDocuments(t *testing.T) {
	t.Run("docx", func(t *testing.T) {
		files := newFakeFiles().add("f1", "essay.docx", MimeTypeDOCX, buildDOCX(t, "First paragraph", "Second &amp; last"))

		text, err := NewDriveExtractor(files, true, nil).Extract(context.Background(), classroom.DriveFileRef{ID: "f1"})
		require.NoError(t, err)
		assert.Equal(t, "First paragraph\nSecond & last", text)
	})

	t.Run("xlsx", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "score"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "ada"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		files := newFakeFiles().add("f1", "data.xlsx", MimeTypeXLSX, buf.Bytes())
		text, err := NewDriveExtractor(files, true, nil).Extract(context.Background(), classroom.DriveFileRef{ID: "f1"})
		require.NoError(t, err)
		assert.Equal(t, "name,score\nada,10", text)
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		files := newFakeFiles().add("f1", "paper.pdf", MimeTypePDF, []byte("not a pdf"))

		_, err := NewDriveExtractor(files, true, nil).Extract(context.Background(), classroom.DriveFileRef{ID: "f1", Title: "paper.pdf"})
		require.Error(t, err)
		assert.Equal(t, KindDecodeFailure, KindOf(err))
		assert.Contains(t, err.Error(), "Could not decode file 'paper.pdf' as text.")
	})

	t.Run("disabled by default", func(t *testing.T) {
		files := newFakeFiles().add("f1", "essay.docx", MimeTypeDOCX, buildDOCX(t, "text"))

		_, err := NewDriveExtractor(files, false, nil).Extract(context.Background(), classroom.DriveFileRef{ID: "f1"})
		require.Error(t, err)
		assert.Equal(t, KindUnsupportedType, KindOf(err))
	})
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`<w:p></w:p></w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
