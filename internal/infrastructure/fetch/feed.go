package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ScreeningScanner/internal/ports"
)

// FacebookFeed reads recent post messages from a page feed through the
// Graph API.
type FacebookFeed struct {
	client      *resty.Client
	feedURL     string
	accessToken string
}

var _ ports.FeedSource = (*FacebookFeed)(nil)

// NewFacebookFeed wires the Graph API feed endpoint and access token.
func NewFacebookFeed(feedURL, accessToken string) *FacebookFeed {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", userAgent)
	return &FacebookFeed{
		client:      client,
		feedURL:     feedURL,
		accessToken: accessToken,
	}
}

// RecentMessages returns the message text of recent posts, newest first.
// Posts without a message field are dropped.
func (f *FacebookFeed) RecentMessages(ctx context.Context) ([]string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", f.accessToken).
		SetQueryParam("fields", "message").
		Get(f.feedURL)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("feed returned %s", resp.Status())
	}

	var payload struct {
		Data []struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	messages := make([]string, 0, len(payload.Data))
	for _, d := range payload.Data {
		if d.Message != "" {
			messages = append(messages, d.Message)
		}
	}

	return messages, nil
}
