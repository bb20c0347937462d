package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

const reedPageSize = 100

// Reed adapts the Reed job search API (UK only). Reed pages with a
// resultsToSkip offset and reports dates in UK day-first form.
type Reed struct {
	client  *Client
	baseURL string
}

func NewReed(c *Client) *Reed {
	return &Reed{client: c, baseURL: "https://www.reed.co.uk/api/1.0/search"}
}

func (p *Reed) Name() string { return "reed" }

type reedResponse struct {
	Results      []map[string]any `json:"results"`
	TotalResults int              `json:"totalResults"`
}

type reedResult struct {
	JobID          int64  `json:"jobId"`
	JobTitle       string `json:"jobTitle"`
	EmployerName   string `json:"employerName"`
	LocationName   string `json:"locationName"`
	Date           string `json:"date"`
	JobURL         string `json:"jobUrl"`
	JobDescription string `json:"jobDescription"`
}

func (p *Reed) Search(ctx context.Context, f Filter) ([]*jobs.Posting, error) {
	q := url.Values{}
	q.Set("keywords", f.Query())
	q.Set("locationName", f.Location)
	q.Set("resultsToTake", strconv.Itoa(reedPageSize))
	if f.Remote() {
		// Reed has no remote flag; fold it into the keyword query.
		q.Set("keywords", f.Query()+" remote")
	}

	var items []map[string]any
	for skip := 0; ; skip += reedPageSize {
		q.Set("resultsToSkip", strconv.Itoa(skip))

		var resp reedResponse
		if err := p.client.getJSON(ctx, p.baseURL, q, &resp); err != nil {
			return nil, fmt.Errorf("reed search: %w", err)
		}

		items = append(items, resp.Results...)
		if len(items) >= resp.TotalResults || len(resp.Results) == 0 {
			break
		}
	}

	var raw []reedResult
	if err := decodeItems(items, &raw); err != nil {
		return nil, fmt.Errorf("reed decode: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(raw))
	for _, r := range raw {
		postings = append(postings, &jobs.Posting{
			Source:       p.Name(),
			SourceID:     strconv.FormatInt(r.JobID, 10),
			Title:        r.JobTitle,
			Employer:     r.EmployerName,
			Location:     r.LocationName,
			LocationType: jobs.DetectLocationType(r.LocationName),
			URL:          r.JobURL,
			PostedAt:     parseTime(r.Date, "02/01/2006"),
			Snippet:      r.JobDescription,
		})
	}

	return postings, nil
}
