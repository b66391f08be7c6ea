// Package source fetches the raw delimited text a dataset is parsed from.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source is somewhere raw dataset text can be read from.
type Source interface {
	// Name identifies the source in logs and dataset metadata.
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// LoadError reports that a source could not be read.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrUnsupportedScheme is returned by New for URIs it cannot open.
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Options configures the clients used by remote sources.
type Options struct {
	HTTPClient *http.Client
	S3Region   string
	S3Endpoint string
}

// New resolves uri to a Source: a local path (or file://), http(s)://,
// s3://bucket/key or gs://bucket/object.
func New(uri string, opts Options) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, &LoadError{Source: uri, Err: errors.New("empty source")}
	}
	if !strings.Contains(uri, "://") {
		return &File{Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, &LoadError{Source: uri, Err: err}
	}
	switch u.Scheme {
	case "file":
		return &File{Path: u.Path}, nil
	case "http", "https":
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return &HTTP{URL: uri, Client: client}, nil
	case "s3":
		return NewS3(u.Host, strings.TrimPrefix(u.Path, "/"), opts.S3Region, opts.S3Endpoint), nil
	case "gs":
		return NewGCS(u.Host, strings.TrimPrefix(u.Path, "/")), nil
	}
	return nil, &LoadError{Source: uri, Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)}
}

// File reads a local file.
type File struct {
	Path string
}

func (f *File) Name() string { return f.Path }

func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: f.Path, Err: err}
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, &LoadError{Source: f.Path, Err: err}
	}
	return file, nil
}

// HTTP fetches a URL with GET.
type HTTP struct {
	URL    string
	Client *http.Client
}

func (h *HTTP) Name() string { return h.URL }

func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, &LoadError{Source: h.URL, Err: err}
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: h.URL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &LoadError{Source: h.URL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return resp.Body, nil
}

// Bytes serves an in-memory body, e.g. an uploaded file.
type Bytes struct {
	Label string
	Data  []byte
}

func (b *Bytes) Name() string { return b.Label }

func (b *Bytes) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
