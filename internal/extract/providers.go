package extract

import (
	"context"

	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/forms"
)

// FileContentProvider reads Drive files. DownloadOrExport exports
// Workspace-native types, downloads everything else and returns the MIME type
// of the bytes received.
type FileContentProvider interface {
	GetMetadata(ctx context.Context, fileID string) (*drive.FileMetadata, error)
	DownloadOrExport(ctx context.Context, meta *drive.FileMetadata) (string, []byte, error)
}

// FormProvider reads Google Forms.
type FormProvider interface {
	GetStructure(ctx context.Context, formID string) (*forms.Structure, error)
	ListResponses(ctx context.Context, formID string) ([]forms.Response, error)
}

// DocumentTextProvider reads Google Docs as plain text.
type DocumentTextProvider interface {
	GetPlainText(ctx context.Context, documentID string) (string, error)
}
