package port

import "context"

// PageRenderer abstracts PDF page counting and rasterization. RenderPage
// returns the page as an encoded PNG at the requested DPI; pageIndex is
// 0-based.
type PageRenderer interface {
	PageCount(ctx context.Context, pdf []byte) (int, error)
	RenderPage(ctx context.Context, pdf []byte, pageIndex, dpi int) ([]byte, error)
}
