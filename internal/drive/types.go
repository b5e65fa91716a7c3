package drive

import (
	"errors"
	"strings"
	"time"
)

// Workspace-native MIME types.
const (
	MimeTypeDocument     = "application/vnd.google-apps.document"
	MimeTypeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypePresentation = "application/vnd.google-apps.presentation"

	workspacePrefix = "application/vnd.google-apps."
)

// DefaultMaxDownloadBytes caps a single download or export.
const DefaultMaxDownloadBytes int64 = 25 << 20

// ErrUnsupportedExport is returned for Workspace-native types that have no
// plain-text export, such as drawings, forms or folders.
var ErrUnsupportedExport = errors.New("unsupported Google Workspace type for direct download")

// ErrTooLarge is returned when a payload exceeds the client's size limit.
var ErrTooLarge = errors.New("file exceeds download size limit")

var exportTargets = map[string]string{
	MimeTypeDocument:     "text/plain",
	MimeTypeSpreadsheet:  "text/csv",
	MimeTypePresentation: "text/plain",
}

// IsWorkspaceType reports whether mimeType is a Drive-native format that
// cannot be downloaded directly.
func IsWorkspaceType(mimeType string) bool {
	return strings.HasPrefix(mimeType, workspacePrefix)
}

// ExportMimeType returns the text format a Workspace-native type is exported to.
func ExportMimeType(mimeType string) (string, bool) {
	target, ok := exportTargets[mimeType]
	return target, ok
}

// FileMetadata is the subset of Drive file metadata the extractor needs.
type FileMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime,omitempty"`
	WebViewLink  string    `json:"webViewLink,omitempty"`
}
