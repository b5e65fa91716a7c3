package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/docs"
)

const untitledLink = "Untitled Link"

// LinkExtractor reads Google Docs links. Other links are not fetched.
type LinkExtractor struct {
	documents DocumentTextProvider
}

// NewLinkExtractor creates a LinkExtractor. A nil provider makes every link unsupported.
func NewLinkExtractor(documents DocumentTextProvider) *LinkExtractor {
	return &LinkExtractor{documents: documents}
}

// Extract returns the plain text of a linked Google Doc.
func (e *LinkExtractor) Extract(ctx context.Context, ref classroom.LinkRef) (string, error) {
	title := ref.Title
	if title == "" {
		title = untitledLink
	}

	documentID := docs.ParseDocumentID(ref.URL)
	if documentID == "" || e.documents == nil {
		return "", &Error{Kind: KindUnsupportedType, Message: fmt.Sprintf("Link attachment '%s' not supported.", title)}
	}

	text, err := e.documents.GetPlainText(ctx, documentID)
	if err != nil {
		if !isAPIError(err) && providerErrorKind(err) == KindUnexpected {
			return "", &Error{Kind: KindUnexpected, Message: fmt.Sprintf("Unexpected error with document '%s': %v", title, err), Err: err}
		}
		return "", &Error{Kind: providerErrorKind(err), Message: fmt.Sprintf("Error accessing document '%s': %v", title, err), Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindEmptyContent, Message: fmt.Sprintf("Document '%s' is empty.", title)}
	}
	return text, nil
}
