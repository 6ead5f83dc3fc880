package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ScreeningScanner/internal/ports"
)

// RestyAPIClient posts form payloads to JSON endpoints (the smcinema.com
// ajax API) and decodes the responses.
type RestyAPIClient struct {
	client *resty.Client
}

var _ ports.APIClient = (*RestyAPIClient)(nil)

// NewRestyAPIClient builds a reusable client with identifying headers.
func NewRestyAPIClient() *RestyAPIClient {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetHeader("User-Agent", userAgent)
	return &RestyAPIClient{client: client}
}

// PostJSON issues the request and unmarshals the body into out. A body
// that is not valid JSON is reported as a decode error; callers classify
// it against their own source contract.
func (c *RestyAPIClient) PostJSON(ctx context.Context, endpoint string, form map[string]string, out any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}

	if resp.IsError() {
		return fmt.Errorf("%s returned %s", endpoint, resp.Status())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", endpoint, ports.ErrInvalidResponse, err)
	}

	return nil
}
