package ports

import (
	"context"
	"errors"
	"time"

	"ScreeningScanner/internal/domain"
)

// ErrInvalidResponse marks an API response body that could not be decoded
// as JSON. Parsers classify it against their own source contract; plain
// transport failures are returned unwrapped.
var ErrInvalidResponse = errors.New("invalid api response")

// PageFetcher retrieves raw HTML for a URL. Transport failures propagate
// unchanged; the scraping core does not retry.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// APIClient issues a JSON API request with a form payload and decodes the
// response into out. A response that fails to decode is an error.
type APIClient interface {
	PostJSON(ctx context.Context, endpoint string, form map[string]string, out any) error
}

// FeedSource lists recent post messages from a social feed, newest first.
type FeedSource interface {
	RecentMessages(ctx context.Context) ([]string, error)
}

// ScreeningRepository persists the normalized movies collected for a mall.
type ScreeningRepository interface {
	SaveMovies(ctx context.Context, mall string, movies []domain.MovieRecord) error
}

// Notifier publishes a human-readable fetch-run report.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when the pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
