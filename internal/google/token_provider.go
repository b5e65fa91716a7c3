package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool

	// HTTPClientForAccount returns an authenticated HTTP client for the account
	HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error)
}

// FileTokenProvider provides tokens from disk files written by the auth command.
type FileTokenProvider struct {
	config *oauth2.Config
}

// NewFileTokenProvider creates a new file-based token provider for the OAuth client config.
func NewFileTokenProvider(config *oauth2.Config) *FileTokenProvider {
	return &FileTokenProvider{config: config}
}

// GetTokenForAccount retrieves a token from disk for the specified account
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, p.config, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// HTTPClientForAccount returns an HTTP/1.1 client authenticated with the account's token.
func (p *FileTokenProvider) HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	return GetHTTPClientForAccount(ctx, p.config, account)
}
