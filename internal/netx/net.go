// Package netx holds the HTTP side of poster uploads.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UploadTimeout bounds a single poster upload.
const UploadTimeout = 60 * time.Second

var httpClient = &http.Client{Timeout: UploadTimeout}

// UploadToS3PresignedURL PUTs a poster to a presigned object storage URL.
// contentType must match the one the URL was signed for; empty means
// application/octet-stream.
func UploadToS3PresignedURL(ctx context.Context, url, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("poster upload: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("poster upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("poster upload: %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return nil
}
