package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// Storage reads and writes objects by URI.
type Storage interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
	Upload(ctx context.Context, uri string, r io.Reader) error
}

// Client is the Cloud Storage implementation of Storage. It uses
// Application Default Credentials.
type Client struct {
	client *storage.Client
}

var _ Storage = (*Client)(nil)

// NewClient creates a storage client.
func NewClient(ctx context.Context) (*Client, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: creating storage client: %w", err)
	}
	return &Client{client: c}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Fetch downloads the object at uri.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

// Upload writes r to the object at uri, replacing it.
func (c *Client) Upload(ctx context.Context, uri string, r io.Reader) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return fmt.Errorf("Upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copying to %s: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalizing %s: %w", uri, err)
	}
	return nil
}

// ReadSource reads a gs:// URI through s, or a local file otherwise. s may
// be nil when src is known to be local.
func ReadSource(ctx context.Context, s Storage, src string) ([]byte, error) {
	if !IsURI(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("ReadSource: %w", err)
		}
		return data, nil
	}
	if s == nil {
		return nil, fmt.Errorf("ReadSource: no storage client for %s", src)
	}
	return s.Fetch(ctx, src)
}

// WriteDest writes data to a gs:// URI through s, or to a local file.
func WriteDest(ctx context.Context, s Storage, dst string, r io.Reader) error {
	if IsURI(dst) {
		if s == nil {
			return fmt.Errorf("WriteDest: no storage client for %s", dst)
		}
		return s.Upload(ctx, dst, r)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("WriteDest: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("WriteDest: writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteDest: closing %s: %w", dst, err)
	}
	return nil
}
