package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// Jobserve adapts the Jobserve search feed (UK only). Jobserve rarely
// reports posting dates, so most of its postings carry an unknown date.
type Jobserve struct {
	client  *Client
	baseURL string
}

func NewJobserve(c *Client) *Jobserve {
	return &Jobserve{client: c, baseURL: "https://www.jobserve.com/gb/en/JobSearch.json"}
}

func (p *Jobserve) Name() string { return "jobserve" }

type jobserveResponse struct {
	Items []map[string]any `json:"items"`
}

type jobserveItem struct {
	Reference string `json:"reference"`
	Position  string `json:"position"`
	Agency    string `json:"agency"`
	Location  string `json:"location"`
	Permalink string `json:"permalink"`
	Summary   string `json:"summary"`
	Listed    string `json:"listed"`
}

func (p *Jobserve) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("shid", f.Query())
	q.Set("loc", f.Location)
	if f.Remote() {
		q.Set("wfh", "1")
	}

	var resp jobserveResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("jobserve search: %w", err)
	}

	var raw []jobserveItem
	if err := decodeItems(resp.Items, &raw); err != nil {
		return nil, fmt.Errorf("jobserve decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     r.Reference,
			Title:        r.Position,
			Employer:     r.Agency,
			Location:     r.Location,
			LocationType: jobs.DetectLocationType(r.Location),
			URL:          r.Permalink,
			PostedAt:     parseTime(r.Listed, time.RFC3339),
			Snippet:      r.Summary,
		})
	}

	return postings, nil
}
