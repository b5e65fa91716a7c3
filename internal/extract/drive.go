package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

const untitledDriveFile = "Untitled Drive File"

// DriveExtractor turns a Drive file attachment into text.
type DriveExtractor struct {
	files     FileContentProvider
	converter *DocumentConverter
	logger    *slog.Logger
}

// NewDriveExtractor creates a DriveExtractor. With convertDocuments set,
// PDF, XLSX and DOCX uploads are converted to text instead of being rejected
// as non-text documents.
func NewDriveExtractor(files FileContentProvider, convertDocuments bool, logger *slog.Logger) *DriveExtractor {
	e := &DriveExtractor{
		files:  files,
		logger: logging.OrDefault(logger),
	}
	if convertDocuments {
		e.converter = &DocumentConverter{}
	}
	return e
}

// Extract returns the text of the referenced file. Workspace-native files
// are exported, everything else is downloaded as is.
func (e *DriveExtractor) Extract(ctx context.Context, ref classroom.DriveFileRef) (string, error) {
	title := ref.Title
	if title == "" {
		title = untitledDriveFile
	}
	if ref.ID == "" {
		return "", &Error{Kind: KindStructuralMismatch, Message: fmt.Sprintf("Drive file '%s' has no file ID.", title)}
	}

	logger := e.logger.With(logging.ResourceID(ref.ID), logging.Title(title))

	meta, err := e.files.GetMetadata(ctx, ref.ID)
	if err != nil {
		return "", driveFailure(title, err)
	}

	contentType, data, err := e.files.DownloadOrExport(ctx, meta)
	if err != nil {
		if errors.Is(err, drive.ErrUnsupportedExport) || errors.Is(err, drive.ErrTooLarge) {
			return "", &Error{
				Kind:    KindUnsupportedType,
				Message: fmt.Sprintf("Error accessing Drive file '%s': %v", title, err),
				Err:     err,
			}
		}
		return "", driveFailure(title, err)
	}

	if len(data) == 0 {
		logger.Warn("Downloaded empty content for Drive file")
		return "", &Error{Kind: KindEmptyContent, Message: fmt.Sprintf("File '%s' is empty.", title)}
	}

	var text string
	switch {
	case e.converter != nil && e.converter.Supports(contentType):
		text, err = e.converter.Convert(contentType, data)
		if err != nil {
			logger.Warn("Could not convert Drive file to text", slog.String("mime_type", contentType), logging.Err(err))
			return "", &Error{Kind: KindDecodeFailure, Message: fmt.Sprintf("Could not decode file '%s' as text.", title), Err: err}
		}
	case isTextual(contentType):
		var ok bool
		text, ok = decodeText(data)
		if !ok {
			logger.Warn("Could not decode Drive file as text", slog.String("mime_type", contentType))
			return "", &Error{Kind: KindDecodeFailure, Message: fmt.Sprintf("Could not decode file '%s' as text.", title)}
		}
	default:
		logger.Warn("Drive file is not text", slog.String("mime_type", contentType))
		return "", &Error{Kind: KindUnsupportedType, Message: fmt.Sprintf("File '%s' is not a text-based document.", title)}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindEmptyContent, Message: fmt.Sprintf("File '%s' is empty.", title)}
	}
	return text, nil
}

func driveFailure(title string, err error) *Error {
	if !isAPIError(err) && providerErrorKind(err) == KindUnexpected {
		return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("Unexpected error with Drive file '%s': %v", title, err), Err: err}
	}
	return &Error{Kind: providerErrorKind(err), Message: fmt.Sprintf("Error accessing Drive file '%s': %v", title, err), Err: err}
}
