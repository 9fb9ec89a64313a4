package store

import (
	"context"
	"time"
)

// Provider is a self-hosted firmware artifact store. It lets an operator
// stage images in their own bucket and hand the device a presigned URL
// instead of routing the image through the cloud API.
type Provider interface {
	// EnsureBucket makes sure the artifact bucket exists.
	EnsureBucket(ctx context.Context) error

	// PutFirmware uploads a local firmware image and returns its object key.
	PutFirmware(ctx context.Context, localPath string) (string, error)

	// PresignedURL returns a signed, temporary download link for a stored
	// artifact.
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
