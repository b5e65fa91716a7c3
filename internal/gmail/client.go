package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
	api     google.APIOptions
}

// NewClient creates a Gmail client from explicit client options.
func NewClient(ctx context.Context, api google.APIOptions, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, api: api}, nil
}

// NewClientForAccount creates a Gmail client authenticated as account.
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

// SendEmail sends msg from the authenticated user and returns the Gmail message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := msg.Build()
	if err != nil {
		return "", err
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	sent, err := google.Call(ctx, c.api, instrumentation.ServiceGmail, instrumentation.OperationSend, "",
		func(ctx context.Context) (*gmail.Message, error) {
			return c.svc.Messages.Send("me", gmailMsg).Context(ctx).Do()
		})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}
