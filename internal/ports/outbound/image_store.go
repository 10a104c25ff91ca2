package outbound

import "context"

// ImageStore stores uploaded auction images and hands back an opaque path
// the client can embed in a create-auction request. The core never
// interprets the returned path.
type ImageStore interface {
	// Upload stores the image bytes under a generated key and returns its path
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
