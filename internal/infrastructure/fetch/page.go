package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"ScreeningScanner/internal/ports"
)

// Identifying headers sent with every request so site owners know who is
// crawling them.
const userAgent = "ScreeningScanner/1.0"

// HTTPPageFetcher retrieves raw HTML pages over plain GET requests.
type HTTPPageFetcher struct {
	client *http.Client
}

var _ ports.PageFetcher = (*HTTPPageFetcher)(nil)

// NewHTTPPageFetcher wires an HTTP client; a nil client gets a 20s timeout default.
func NewHTTPPageFetcher(client *http.Client) *HTTPPageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPPageFetcher{client: client}
}

// FetchPage performs a GET and returns the response body bytes.
func (f *HTTPPageFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	return body, nil
}
