package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"docsift/internal/config"
	"docsift/internal/domain"
)

const (
	// acceptHeader mirrors what a browser sends when fetching a document link.
	acceptHeader = "image/*,application/pdf,*/*;q=0.8"

	downloadChunkSize = 8192
)

// FetchResult carries raw document bytes and the hints recovered alongside
// them. The content type and filename are hints for the sniffer, never
// authoritative.
type FetchResult struct {
	Data        []byte
	Filename    string
	ContentType string
	Source      domain.SourceType
}

// Fetcher retrieves document bytes from remote URLs, uploads, and local
// paths under strict protocol, size, and timeout constraints.
type Fetcher struct {
	client          *http.Client
	userAgent       string
	maxIngestBytes  int64
	maxAssetBytes   int64
	allowLocalPaths bool
}

// New creates a Fetcher whose HTTP client enforces the configured
// wall-clock timeout across the whole download, body included.
func New(cfg config.FetchConfig) *Fetcher {
	return NewWithClient(cfg, &http.Client{Timeout: cfg.Timeout()})
}

// NewWithClient creates a Fetcher using the given HTTP client (used in
// tests to point at local TLS servers).
func NewWithClient(cfg config.FetchConfig, client *http.Client) *Fetcher {
	return &Fetcher{
		client:          client,
		userAgent:       cfg.UserAgent,
		maxIngestBytes:  cfg.MaxIngestSizeBytes(),
		maxAssetBytes:   cfg.MaxAssetSizeBytes(),
		allowLocalPaths: cfg.AllowLocalPaths,
	}
}

// FetchDocument downloads a document from an HTTPS URL under the dedicated
// ingestion size ceiling.
func (f *Fetcher) FetchDocument(ctx context.Context, rawURL string) (*FetchResult, error) {
	return f.download(ctx, rawURL, f.maxIngestBytes)
}

// FetchAsset downloads a document from an HTTPS URL under the smaller
// generic-endpoint size ceiling.
func (f *Fetcher) FetchAsset(ctx context.Context, rawURL string) (*FetchResult, error) {
	return f.download(ctx, rawURL, f.maxAssetBytes)
}

// ReadUpload wraps already-received upload bytes, applying the generic
// size ceiling.
func (f *Fetcher) ReadUpload(data []byte, filename string) (*FetchResult, error) {
	if int64(len(data)) > f.maxAssetBytes {
		return nil, fmt.Errorf("%w: upload is %d bytes, limit %d", domain.ErrPayloadTooLarge, len(data), f.maxAssetBytes)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyPayload
	}
	return &FetchResult{Data: data, Filename: filename, Source: domain.SourceFile}, nil
}

// ReadLocal reads a document from the local filesystem. Only permitted on
// deployments that explicitly enable local paths; sandboxing beyond
// normal I/O errors is a deployment concern, not enforced here.
func (f *Fetcher) ReadLocal(p string) (*FetchResult, error) {
	if !f.allowLocalPaths {
		return nil, domain.ErrLocalPathsDisabled
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.Size() > f.maxAssetBytes {
		return nil, fmt.Errorf("%w: file is %d bytes, limit %d", domain.ErrPayloadTooLarge, info.Size(), f.maxAssetBytes)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyPayload
	}
	return &FetchResult{Data: data, Filename: filepath.Base(p), Source: domain.SourcePath}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string, maxBytes int64) (*FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	// Scheme is checked before any network I/O happens.
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, fmt.Errorf("%w, got %q", domain.ErrInvalidScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.ErrDownloadTimeout
		}
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	// A declared Content-Length over the cap short-circuits the download;
	// the stream counter below still guards servers that lie or omit it.
	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: content length is %d bytes, limit %d", domain.ErrPayloadTooLarge, resp.ContentLength, maxBytes)
	}

	data, err := readCapped(resp.Body, maxBytes)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.ErrDownloadTimeout
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyPayload
	}

	return &FetchResult{
		Data:        data,
		Filename:    filenameFromURL(u),
		ContentType: resp.Header.Get("Content-Type"),
		Source:      domain.SourceURL,
	}, nil
}

// readCapped reads r in chunks, aborting as soon as the running total
// exceeds maxBytes. Partial bytes are discarded on abort.
func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, downloadChunkSize)
	var total int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return nil, fmt.Errorf("%w: download exceeded %d bytes", domain.ErrPayloadTooLarge, maxBytes)
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}
}

func filenameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
