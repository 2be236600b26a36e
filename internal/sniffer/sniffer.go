package sniffer

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"docsift/internal/domain"
)

// acceptedTypes is the closed set of MIME types the pipeline handles.
var acceptedTypes = []string{"application/pdf", "image/png", "image/jpeg"}

// Sniffer determines the true type of document bytes from content
// signatures. Caller-declared extension and Content-Type header are hints
// only; when they disagree with the sniffed type, the sniffed type wins.
type Sniffer struct {
	degraded bool
}

// New returns a content-signature Sniffer.
func New() *Sniffer {
	return &Sniffer{}
}

// NewDegraded returns a Sniffer that infers type from the declared
// extension or Content-Type header instead of content signatures.
// Intended for deployments where signature detection is unavailable;
// payloads it produces are flagged so the reduced validation strength
// stays visible downstream.
func NewDegraded() *Sniffer {
	return &Sniffer{degraded: true}
}

// Validate sniffs data and returns a ValidatedPayload, or an
// UnsupportedTypeError when the detected type is outside the accepted set.
// filename and contentType are caller-supplied hints and may be empty.
func (s *Sniffer) Validate(data []byte, filename, contentType string) (*domain.ValidatedPayload, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyPayload
	}
	ext := extensionOf(filename)
	if s.degraded {
		return s.validateDegraded(data, ext, contentType)
	}

	mime := mimetype.Detect(data)
	ft, ok := fileTypeForMIME(mime)
	if !ok {
		return nil, &domain.UnsupportedTypeError{Detected: mime.String(), Accepted: acceptedTypes}
	}
	if ext != "" && domain.AllowedExtensions[ext] != ft {
		log.Printf("sniffer.Validate: declared extension %q disagrees with sniffed type %s, using sniffed type", ext, mime.String())
	}
	if ct := normalizeContentType(contentType); ct != "" && domain.AllowedContentTypes[ct] != ft {
		log.Printf("sniffer.Validate: declared content type %q disagrees with sniffed type %s, using sniffed type", ct, mime.String())
	}

	return &domain.ValidatedPayload{
		Data:              data,
		MIMEType:          domain.AllowedFileTypes[ft],
		FileType:          ft,
		SizeBytes:         int64(len(data)),
		DeclaredExtension: ext,
	}, nil
}

func (s *Sniffer) validateDegraded(data []byte, ext, contentType string) (*domain.ValidatedPayload, error) {
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		ft, ok = domain.AllowedContentTypes[normalizeContentType(contentType)]
	}
	if !ok {
		detected := normalizeContentType(contentType)
		if detected == "" {
			detected = "unknown"
		}
		return nil, &domain.UnsupportedTypeError{Detected: detected, Accepted: acceptedTypes}
	}
	log.Printf("sniffer.Validate: signature detection disabled, trusting declared hints (ext=%q, content_type=%q)", ext, contentType)

	return &domain.ValidatedPayload{
		Data:              data,
		MIMEType:          domain.AllowedFileTypes[ft],
		FileType:          ft,
		SizeBytes:         int64(len(data)),
		DeclaredExtension: ext,
		SniffDegraded:     true,
	}, nil
}

func fileTypeForMIME(m *mimetype.MIME) (domain.FileType, bool) {
	switch {
	case m.Is("application/pdf"):
		return domain.FileTypePDF, true
	case m.Is("image/png"):
		return domain.FileTypePNG, true
	case m.Is("image/jpeg"):
		return domain.FileTypeJPG, true
	}
	return "", false
}

func extensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// normalizeContentType lowercases a Content-Type header value and strips
// parameters such as charset.
func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
