package port

import (
	"context"

	"docsift/internal/domain"
)

// OCREngine abstracts optical character recognition of a page image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, format domain.FileType) (string, error)
}
