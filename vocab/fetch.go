/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"bokiquiz.dev/qscan/internal/version"
)

const (
	// DefaultTimeout bounds a vocabulary download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxSize caps a downloaded vocabulary at 1 MB.
	DefaultMaxSize int64 = 1 << 20
)

// ErrTooLarge is returned when a download exceeds the fetcher's size cap.
var ErrTooLarge = errors.New("vocabulary exceeds maximum size")

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// Resource is a downloaded vocabulary document.
type Resource struct {
	Data        []byte
	ContentType string
}

// Fetcher downloads vocabulary documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Resource, error)
}

// HTTPFetcher is a Fetcher over net/http that refuses oversized bodies.
type HTTPFetcher struct {
	maxSize int64
	client  *http.Client
}

// NewHTTPFetcher returns a fetcher that rejects bodies over maxSize bytes.
func NewHTTPFetcher(maxSize int64) *HTTPFetcher {
	return &HTTPFetcher{maxSize: maxSize, client: &http.Client{}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout fetching %s: %w", rawURL, err)
		}
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Status: resp.Status, Code: resp.StatusCode}
	}
	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", rawURL, ErrTooLarge, f.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", rawURL, ErrTooLarge, f.maxSize)
	}
	return &Resource{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// IsURL reports whether location names an http or https resource.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "https://") || strings.HasPrefix(location, "http://")
}

// LoadURL downloads and parses a vocabulary. A .yaml, .yml or .json path
// extension decides the format; otherwise the response Content-Type does.
func LoadURL(ctx context.Context, f Fetcher, rawURL string) (*Vocabulary, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary URL %q: %w", rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	res, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	v, err := Parse(res.Data, formatOf(path.Ext(u.Path), res.ContentType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return v, nil
}

func formatOf(ext, contentType string) string {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return ext
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ext
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return ".json"
	case strings.HasSuffix(mediaType, "/yaml"), strings.HasSuffix(mediaType, "/x-yaml"), strings.HasSuffix(mediaType, "+yaml"):
		return ".yaml"
	}
	return ext
}
