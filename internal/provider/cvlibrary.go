package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// CVLibrary adapts the CV-Library search API (UK only).
type CVLibrary struct {
	client  *Client
	baseURL string
}

func NewCVLibrary(c *Client) *CVLibrary {
	return &CVLibrary{client: c, baseURL: "https://www.cv-library.co.uk/search-jobs-json"}
}

func (p *CVLibrary) Name() string { return "cvlibrary" }

type cvLibraryResponse struct {
	Jobs []map[string]any `json:"jobs"`
}

type cvLibraryJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Posted      string `json:"posted"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (p *CVLibrary) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("q", f.Query())
	q.Set("geo", f.Location)
	q.Set("perpage", "100")
	if f.DaysAgo > 0 {
		q.Set("posted", strconv.Itoa(f.DaysAgo))
	}

	var resp cvLibraryResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("cv-library search: %w", err)
	}

	var raw []cvLibraryJob
	if err := decodeItems(resp.Jobs, &raw); err != nil {
		return nil, fmt.Errorf("cv-library decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     strconv.FormatInt(r.ID, 10),
			Title:        r.Title,
			Employer:     r.Company,
			Location:     r.Location,
			LocationType: jobs.DetectLocationType(r.Location),
			URL:          r.URL,
			PostedAt:     parseTime(r.Posted, "2006-01-02"),
			Snippet:      r.Description,
		})
	}

	return postings, nil
}
