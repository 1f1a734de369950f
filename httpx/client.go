package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tonefmt/tone"
)

// Client posts and fetches TONE-encoded bodies over HTTP using a shared
// connection pool.
type Client struct {
	pool Pool
}

// NewClient builds a Client backed by pool. A nil pool uses Shared().
func NewClient(pool Pool) *Client {
	if pool == nil {
		pool = Shared()
	}
	return &Client{pool: pool}
}

// PostValue encodes body as TONE and POSTs it to url, decoding the
// response body (which must also be TONE) back into a value tree.
func (c *Client) PostValue(ctx context.Context, url string, body interface{}, opts *tone.EncodeOptions) (interface{}, error) {
	encoded, err := tone.EncodeWithOptions(body, opts)
	if err != nil {
		return nil, fmt.Errorf("httpx: encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(encoded)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", ContentType)

	resp, err := c.pool.GetHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpx: server returned status %d: %s", resp.StatusCode, string(data))
	}

	value, err := tone.Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("httpx: decoding response body: %w", err)
	}
	return value, nil
}
