package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

const indeedPageSize = 50

// Indeed adapts the Indeed job search API. The same adapter serves both the
// US and UK editions; only the host differs.
type Indeed struct {
	client  *Client
	baseURL string
}

func NewIndeed(c *Client, host string) *Indeed {
	return &Indeed{client: c, baseURL: fmt.Sprintf("https://%s/jobs/api/search", host)}
}

func (p *Indeed) Name() string { return "indeed" }

type indeedResponse struct {
	Results      []map[string]any `json:"results"`
	TotalResults int              `json:"totalResults"`
	PageCount    int              `json:"pageCount"`
}

type indeedResult struct {
	JobKey            string `json:"jobkey"`
	Title             string `json:"title"`
	Company           string `json:"company"`
	FormattedLocation string `json:"formattedLocation"`
	Snippet           string `json:"snippet"`
	PubDate           string `json:"pubDate"`
	URL               string `json:"url"`
	Remote            bool   `json:"remote"`
}

func (p *Indeed) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("q", f.Query())
	q.Set("l", f.Location)
	q.Set("limit", strconv.Itoa(indeedPageSize))
	q.Set("sort", "date")
	if f.DaysAgo > 0 {
		q.Set("fromage", strconv.Itoa(f.DaysAgo))
	}
	if f.Remote() {
		q.Set("sc", "attr(remote)")
	}

	var items []map[string]any
	for page := 0; ; page++ {
		q.Set("start", strconv.Itoa(page*indeedPageSize))

		var resp indeedResponse
		if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
			return nil, fmt.Errorf("indeed search: %w", err)
		}

		items = append(items, resp.Results...)
		if len(resp.Results) < indeedPageSize || page+1 >= resp.PageCount {
			break
		}
	}

	var raw []indeedResult
	if err := decodeItems(items, &raw); err != nil {
		return nil, fmt.Errorf("indeed decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		locType := jobs.DetectLocationType(r.FormattedLocation)
		if r.Remote {
			locType = jobs.LocationRemote
		}
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     r.JobKey,
			Title:        r.Title,
			Employer:     r.Company,
			Location:     r.FormattedLocation,
			LocationType: locType,
			URL:          r.URL,
			PostedAt:     parseTime(r.PubDate, time.RFC3339, time.RFC1123),
			Snippet:      r.Snippet,
		})
	}

	return postings, nil
}
