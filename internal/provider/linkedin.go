package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// LinkedIn adapts the LinkedIn guest job search endpoint.
type LinkedIn struct {
	client  *Client
	baseURL string
}

func NewLinkedIn(c *Client) *LinkedIn {
	return &LinkedIn{client: c, baseURL: "https://www.linkedin.com/jobs-guest/jobs/api/search"}
}

func (p *LinkedIn) Name() string { return "linkedin" }

type linkedinResponse struct {
	Elements []map[string]any `json:"elements"`
}

type linkedinElement struct {
	EntityURN          string `json:"entityUrn"`
	Title              string `json:"title"`
	CompanyName        string `json:"companyName"`
	FormattedLocation  string `json:"formattedLocation"`
	ListedAt           int64  `json:"listedAt"`
	JobPostingURL      string `json:"jobPostingUrl"`
	DescriptionSnippet string `json:"descriptionSnippet"`
	WorkplaceType      string `json:"workplaceType"`
}

func (p *LinkedIn) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("keywords", f.Query())
	q.Set("location", f.Location)
	if f.DaysAgo > 0 {
		// LinkedIn takes the recency window in seconds.
		q.Set("f_TPR", fmt.Sprintf("r%d", f.DaysAgo*24*3600))
	}
	if f.Remote() {
		q.Set("f_WT", "2")
	}

	var resp linkedinResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("linkedin search: %w", err)
	}

	var raw []linkedinElement
	if err := decodeItems(resp.Elements, &raw); err != nil {
		return nil, fmt.Errorf("linkedin decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		var postedAt *time.Time
		if r.ListedAt > 0 {
			t := time.UnixMilli(r.ListedAt).UTC()
			postedAt = &t
		}

		locType := jobs.DetectLocationType(r.FormattedLocation)
		switch r.WorkplaceType {
		case "remote":
			locType = jobs.LocationRemote
		case "hybrid":
			locType = jobs.LocationHybrid
		case "on-site":
			locType = jobs.LocationOnsite
		}

		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     r.EntityURN,
			Title:        r.Title,
			Employer:     r.CompanyName,
			Location:     r.FormattedLocation,
			LocationType: locType,
			URL:          r.JobPostingURL,
			PostedAt:     postedAt,
			Snippet:      r.DescriptionSnippet,
		})
	}

	return postings, nil
}
