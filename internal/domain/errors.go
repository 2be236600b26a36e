package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidScheme          = errors.New("url scheme must be https")
	ErrDownloadTimeout        = errors.New("document download timed out")
	ErrPayloadTooLarge        = errors.New("payload exceeds maximum allowed size")
	ErrEmptyPayload           = errors.New("document payload is empty")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrLocalPathsDisabled     = errors.New("local path ingestion is disabled on this deployment")
	ErrMissingReference       = errors.New("no document reference supplied")
	ErrAmbiguousReference     = errors.New("more than one document reference supplied")
	ErrOCRFailed              = errors.New("ocr produced no usable text")
	ErrInsufficientExtraction = errors.New("extraction produced insufficient data")
)

// UnsupportedTypeError reports a sniffed MIME type outside the accepted set.
type UnsupportedTypeError struct {
	Detected string
	Accepted []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type %q (accepted: %s)", e.Detected, strings.Join(e.Accepted, ", "))
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedFileType
}

// PageRenderError reports a page that failed to rasterize. A single
// unrenderable page fails the whole request rather than dropping pages.
type PageRenderError struct {
	PageIndex int
	Err       error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.PageIndex, e.Err)
}

func (e *PageRenderError) Unwrap() error {
	return e.Err
}
