package provider

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	defaultUserAgent = "jobpilot/1.0 (job aggregation pipeline)"
	contentType      = "application/json"
	contentEncoding  = "gzip, deflate, br"

	// Per-request transport ceiling; the aggregator applies its own
	// per-adapter deadline on top of this.
	httpTimeout = 15 * time.Second
)

// Client carries the HTTP plumbing shared by every listing-source adapter.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
		},
		UserAgent: defaultUserAgent,
		logger:    logger,
	}
}

// getJSON makes a GET request and decodes the JSON body into target,
// transparently handling gzip-encoded responses.
func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

// decodeItems maps loosely-typed result items onto the adapter's raw shape
// using json tags, tolerating fields a source adds or omits.
func decodeItems(items []map[string]any, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}

// parseTime tries the provided layouts in order, returning nil when none
// match. Sources disagree wildly on date formats.
func parseTime(value string, layouts ...string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
