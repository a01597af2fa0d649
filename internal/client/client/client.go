package client

import (
	"context"

	"github.com/dmitrijs2005/cal/internal/rowstore"
)

// PosterUpload is a presigned poster upload issued by the server.
type PosterUpload struct {
	Key       string
	UploadURL string
	PublicURL string
}

// Client is the remote store as the calendar client uses it.
type Client interface {
	rowstore.Store
	Close() error
	Ping(ctx context.Context) error
	PresignPoster(ctx context.Context, filename string) (*PosterUpload, error)
}
