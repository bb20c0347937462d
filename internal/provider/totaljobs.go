package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// TotalJobs adapts the TotalJobs search API (UK only).
type TotalJobs struct {
	client  *Client
	baseURL string
}

func NewTotalJobs(c *Client) *TotalJobs {
	return &TotalJobs{client: c, baseURL: "https://www.totaljobs.com/api/jobs/search"}
}

func (p *TotalJobs) Name() string { return "totaljobs" }

type totalJobsResponse struct {
	Jobs []map[string]any `json:"jobs"`
}

type totalJobsJob struct {
	ID           int64  `json:"id"`
	JobTitle     string `json:"jobTitle"`
	Company      struct{ Name string `json:"name"` } `json:"company"`
	LocationDesc string `json:"locationDesc"`
	DatePosted   string `json:"datePosted"`
	JobURL       string `json:"jobUrl"`
	ShortAbstract string `json:"shortAbstract"`
	WorkFromHome bool   `json:"workFromHome"`
}

func (p *TotalJobs) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("keywords", f.Query())
	q.Set("location", f.Location)
	q.Set("pageSize", "100")
	if f.DaysAgo > 0 {
		q.Set("postedWithin", strconv.Itoa(f.DaysAgo))
	}

	var resp totalJobsResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("totaljobs search: %w", err)
	}

	var raw []totalJobsJob
	if err := decodeItems(resp.Jobs, &raw); err != nil {
		return nil, fmt.Errorf("totaljobs decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		locType := jobs.DetectLocationType(r.LocationDesc)
		if r.WorkFromHome {
			locType = jobs.LocationRemote
		}
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     strconv.FormatInt(r.ID, 10),
			Title:        r.JobTitle,
			Employer:     r.Company.Name,
			Location:     r.LocationDesc,
			LocationType: locType,
			URL:          r.JobURL,
			PostedAt:     parseTime(r.DatePosted, time.RFC3339, "2006-01-02"),
			Snippet:      r.ShortAbstract,
		})
	}

	return postings, nil
}
