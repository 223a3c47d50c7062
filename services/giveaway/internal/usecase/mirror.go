package usecase

import (
	"context"
	"fmt"

	"ucycle/pkg/imagedata"
)

// ImageMirror copies post images to object storage so share previews can
// link to a URL instead of inlining base64. *s3.Client satisfies it.
type ImageMirror interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

func imageKey(postID string, position int, mimeType string) string {
	return fmt.Sprintf("posts/%s/%d%s", postID, position, imagedata.Extension(mimeType))
}
