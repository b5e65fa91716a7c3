package docs

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

// Client wraps the Google Docs API service
type Client struct {
	service *docs.Service
	account string
	api     google.APIOptions
}

// NewClient creates a Docs client from explicit client options.
func NewClient(ctx context.Context, api google.APIOptions, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{service: svc, api: api}, nil
}

// NewClientForAccount creates a Docs client authenticated as account.
func NewClientForAccount(ctx context.Context, tp google.TokenProvider, account string, api google.APIOptions) (*Client, error) {
	httpClient, err := tp.HTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	c, err := NewClient(ctx, api, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	c.account = account
	return c, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// GetDocument retrieves a Google Doc including the content of every tab.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document ID is required")
	}

	doc, err := google.Call(ctx, c.api, instrumentation.ServiceDocs, instrumentation.OperationGet, documentID,
		func(ctx context.Context) (*docs.Document, error) {
			return c.service.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return doc, nil
}

// GetPlainText returns the text of a Google Doc.
func (c *Client) GetPlainText(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return DocumentToPlainText(doc)
}
