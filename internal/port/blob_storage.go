package port

import (
	"context"
	"io"
)

type BlobStorage interface {
	// Upload writes body under key and returns its public download URL
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
}
