package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves the source file bytes for a resolved asset URL and
// reports the content type the origin declared.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (data []byte, contentType string, err error)
}

const fetchTimeout = 30 * time.Second

type httpFetcher struct {
	client *http.Client
	now    func() time.Time
}

// NewHTTPFetcher builds the default source-file downloader. A nil client
// gets a default with a request timeout.
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &httpFetcher{client: client, now: time.Now}
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cacheBust(rawURL, f.now()), nil)
	if err != nil {
		return nil, "", err
	}
	res, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, "", &FetchError{Status: res.StatusCode}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}
	contentType := res.Header.Get("Content-Type")
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	return data, strings.TrimSpace(contentType), nil
}

// cacheBust appends a timestamp query parameter so CDN caches never serve a
// stale copy of a re-uploaded file at the same URL.
func cacheBust(rawURL string, at time.Time) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set("t", fmt.Sprintf("%d", at.UnixMilli()))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
