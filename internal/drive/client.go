package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
)

// Options configures a Client.
type Options struct {
	// MaxDownloadBytes limits downloads and exports. Zero means DefaultMaxDownloadBytes.
	MaxDownloadBytes int64
	API              google.APIOptions
}

// Client wraps the Google Drive API service
type Client struct {
	service  *drive.Service
	account  string
	maxBytes int64
	api      google.APIOptions
}

// NewClient creates a Drive client from explicit client options.
func NewClient(ctx context.Context, opts Options, clientOpts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	maxBytes := opts.MaxDownloadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}
	return &Client{service: svc, maxBytes: maxBytes, api: opts.API}, nil
}

// NewClientForAccount creates a Drive client authenticated as account.
func NewClientForAccount(ctx context.Context, tp google.TokenProvider, account string, opts Options) (*Client, error) {
	httpClient, err := tp.HTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	c, err := NewClient(ctx, opts, option.WithHTTPClient(httpClient))
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

// GetMetadata fetches the name and MIME type of a file.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (*FileMetadata, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}

	f, err := google.Call(ctx, c.api, instrumentation.ServiceDrive, instrumentation.OperationGet, fileID,
		func(ctx context.Context) (*drive.File, error) {
			return c.service.Files.Get(fileID).
				Fields("id, name, mimeType, size, modifiedTime, webViewLink").
				SupportsAllDrives(true).
				Context(ctx).
				Do()
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	meta := &FileMetadata{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		meta.ModifiedTime = t
	}
	return meta, nil
}

// Export downloads a Workspace-native file converted to mimeType.
func (c *Client) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}
	if mimeType == "" {
		return nil, fmt.Errorf("export MIME type is required")
	}

	data, err := google.Call(ctx, c.api, instrumentation.ServiceDrive, instrumentation.OperationExport, fileID,
		func(ctx context.Context) ([]byte, error) {
			resp, err := c.service.Files.Export(fileID, mimeType).Context(ctx).Download()
			if err != nil {
				return nil, err
			}
			return c.readBody(resp)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to export file as %s: %w", mimeType, err)
	}
	return data, nil
}

// Download fetches the raw bytes of a non-Workspace file.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}

	data, err := google.Call(ctx, c.api, instrumentation.ServiceDrive, instrumentation.OperationDownload, fileID,
		func(ctx context.Context) ([]byte, error) {
			resp, err := c.service.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
			if err != nil {
				return nil, err
			}
			return c.readBody(resp)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

// DownloadOrExport downloads a file, exporting Workspace-native types to
// their text format. It returns the MIME type of the returned bytes.
func (c *Client) DownloadOrExport(ctx context.Context, meta *FileMetadata) (string, []byte, error) {
	if target, ok := ExportMimeType(meta.MimeType); ok {
		data, err := c.Export(ctx, meta.ID, target)
		return target, data, err
	}
	if IsWorkspaceType(meta.MimeType) {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedExport, meta.MimeType)
	}
	data, err := c.Download(ctx, meta.ID)
	return meta.MimeType, data, err
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, c.maxBytes)
	}
	return data, nil
}
