package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// ZipRecruiter adapts the ZipRecruiter search API (US only).
type ZipRecruiter struct {
	client  *Client
	baseURL string
}

func NewZipRecruiter(c *Client) *ZipRecruiter {
	return &ZipRecruiter{client: c, baseURL: "https://api.ziprecruiter.com/jobs/v1"}
}

func (p *ZipRecruiter) Name() string { return "ziprecruiter" }

type zipResponse struct {
	Jobs []map[string]any `json:"jobs"`
}

type zipJob struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	HiringCompany struct{ Name string `json:"name"` } `json:"hiring_company"`
	Location      string `json:"location"`
	PostedTime    string `json:"posted_time"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
}

func (p *ZipRecruiter) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("search", f.Query())
	q.Set("location", f.Location)
	q.Set("jobs_per_page", "100")
	if f.DaysAgo > 0 {
		q.Set("days_ago", strconv.Itoa(f.DaysAgo))
	}
	if f.Remote() {
		q.Set("remote_jobs_only", "true")
	}

	var resp zipResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("ziprecruiter search: %w", err)
	}

	var raw []zipJob
	if err := decodeItems(resp.Jobs, &raw); err != nil {
		return nil, fmt.Errorf("ziprecruiter decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     r.ID,
			Title:        r.Name,
			Employer:     r.HiringCompany.Name,
			Location:     r.Location,
			LocationType: jobs.DetectLocationType(r.Location),
			URL:          r.URL,
			PostedAt:     parseTime(r.PostedTime, time.RFC3339),
			Snippet:      r.Snippet,
		})
	}

	return postings, nil
}
