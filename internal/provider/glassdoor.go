package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// Glassdoor adapts the Glassdoor job listings endpoint. Its payload nests the
// useful fields two levels deep under jobview/header.
type Glassdoor struct {
	client  *Client
	baseURL string
}

func NewGlassdoor(c *Client) *Glassdoor {
	return &Glassdoor{client: c, baseURL: "https://www.glassdoor.com/searchsuggest/jobs"}
}

func (p *Glassdoor) Name() string { return "glassdoor" }

type glassdoorResponse struct {
	JobListings []struct {
		Jobview struct {
			Header struct {
				JobTitle               string `json:"jobTitle"`
				EmployerNameFromSearch string `json:"employerNameFromSearch"`
				LocationName           string `json:"locationName"`
				AgeInDays              int    `json:"ageInDays"`
				JobLink                string `json:"jobLink"`
			} `json:"header"`
			Job struct {
				ListingID           string `json:"listingId"`
				DescriptionFragment string `json:"descriptionFragment"`
			} `json:"job"`
		} `json:"jobview"`
	} `json:"jobListings"`
}

func (p *Glassdoor) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("keyword", f.Query())
	q.Set("location", f.Location)
	if f.DaysAgo > 0 {
		q.Set("fromAge", fmt.Sprintf("%d", f.DaysAgo))
	}
	if f.Remote() {
		q.Set("remoteWorkType", "1")
	}

	var resp glassdoorResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("glassdoor search: %w", err)
	}

	now := time.Now().UTC()
	postings := make([]*jobs.Posting, 0, len(resp.JobListings))
	for _, listing := range resp.JobListings {
		header := listing.Jobview.Header

		// Glassdoor reports age, not a timestamp; zero means posted today
		// and a negative value means the source omitted it.
		var postedAt *time.Time
		if header.AgeInDays >= 0 {
			t := now.Add(-time.Duration(header.AgeInDays) * 24 * time.Hour)
			postedAt = &t
		}

		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     listing.Jobview.Job.ListingID,
			Title:        header.JobTitle,
			Employer:     header.EmployerNameFromSearch,
			Location:     header.LocationName,
			LocationType: jobs.DetectLocationType(header.LocationName),
			URL:          header.JobLink,
			PostedAt:     postedAt,
			Snippet:      listing.Jobview.Job.DescriptionFragment,
		})
	}

	return postings, nil
}
