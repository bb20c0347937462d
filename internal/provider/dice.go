package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// Dice adapts the Dice job search API (US only).
type Dice struct {
	client  *Client
	baseURL string
}

func NewDice(c *Client) *Dice {
	return &Dice{client: c, baseURL: "https://job-search-api.dice.com/v1/search"}
}

func (p *Dice) Name() string { return "dice" }

type diceResponse struct {
	Data []map[string]any `json:"data"`
}

type diceJob struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CompanyName    string `json:"companyName"`
	JobLocation    struct{ DisplayName string `json:"displayName"` } `json:"jobLocation"`
	PostedDate     string `json:"postedDate"`
	DetailsPageURL string `json:"detailsPageUrl"`
	Summary        string `json:"summary"`
	IsRemote       bool   `json:"isRemote"`
}

func (p *Dice) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("q", f.Query())
	q.Set("location", f.Location)
	q.Set("pageSize", "100")
	if f.DaysAgo > 0 {
		q.Set("postedDate", fmt.Sprintf("%dd", f.DaysAgo))
	}
	if f.Remote() {
		q.Set("filters.isRemote", "true")
	}

	var resp diceResponse
	if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
		return nil, fmt.Errorf("dice search: %w", err)
	}

	var raw []diceJob
	if err := decodeItems(resp.Data, &raw); err != nil {
		return nil, fmt.Errorf("dice decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		locType := jobs.DetectLocationType(r.JobLocation.DisplayName)
		if r.IsRemote {
			locType = jobs.LocationRemote
		}
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     r.ID,
			Title:        r.Title,
			Employer:     r.CompanyName,
			Location:     r.JobLocation.DisplayName,
			LocationType: locType,
			URL:          r.DetailsPageURL,
			PostedAt:     parseTime(r.PostedDate, time.RFC3339, "2006-01-02"),
			Snippet:      r.Summary,
		})
	}

	return postings, nil
}
