package filtering

import (
	"context"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

type recencyFilter struct {
	window time.Duration
	now    func() time.Time
}

// NewRecency creates a filter that drops postings whose known posted date is
// older than the window. Postings with an unknown date are retained; they
// cannot be proven stale.
func NewRecency(window time.Duration, now func() time.Time) Filter {
	if now == nil {
		now = time.Now
	}
	return &recencyFilter{window: window, now: now}
}

func (f *recencyFilter) Name() string { return "recency" }

func (f *recencyFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.window <= 0 {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	now := f.now()
	kept := make([]*jobs.Posting, 0, initial)
	for _, posting := range p.Items {
		if age, known := posting.Age(now); known && age > f.window {
			continue
		}
		kept = append(kept, posting)
	}

	next := &jobs.Postings{Items: kept}
	return next, Step{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}, nil
}

type locationTypeFilter struct {
	want jobs.LocationType
}

// NewLocationType creates a filter that keeps only postings of the requested
// location type. Unspecified-type postings pass an "any" filter but are
// excluded from a specific-type filter.
func NewLocationType(want jobs.LocationType) Filter {
	return &locationTypeFilter{want: want}
}

func (f *locationTypeFilter) Name() string { return "location_type" }

func (f *locationTypeFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.want == "" || f.want == jobs.LocationAny {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	kept := make([]*jobs.Posting, 0, initial)
	for _, posting := range p.Items {
		if posting.LocationType == f.want {
			kept = append(kept, posting)
		}
	}

	next := &jobs.Postings{Items: kept}
	return next, Step{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}, nil
}

const (
	// Below this many postings the keyword filter is skipped entirely: with a
	// handful of results it is better to show everything.
	keywordSkipThreshold = 5
	// When strict matching leaves fewer than this many postings out of a
	// larger pool, matching relaxes to title/snippet keywords only.
	keywordRelaxThreshold = 3
)

type keywordFilter struct {
	terms []string
}

// NewKeywords creates a filter that keeps postings mentioning at least one of
// the search terms in their title, employer or snippet. The filter relaxes
// itself rather than starve the caller of results.
func NewKeywords(terms []string) Filter {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if len(term) > 2 {
			cleaned = append(cleaned, term)
		}
	}
	return &keywordFilter{terms: cleaned}
}

func (f *keywordFilter) Name() string { return "keywords" }

func (f *keywordFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if len(f.terms) == 0 || initial <= keywordSkipThreshold {
		return p, Step{Initial: initial, Left: initial}, nil
	}

	kept := matchPostings(p.Items, f.terms)

	if len(kept) < keywordRelaxThreshold && initial > 10 {
		// Relaxed pass matches the single words of multi-word terms. Every
		// strict match still matches one of its own words, so relaxing can
		// only widen the result, never shrink it.
		if relaxed := matchPostings(p.Items, splitTermWords(f.terms)); len(relaxed) > len(kept) {
			kept = relaxed
		}
		if len(kept) == 0 {
			kept = p.Items
		}
	}

	next := &jobs.Postings{Items: kept}
	return next, Step{Initial: initial, Dropped: initial - next.Len(), Left: next.Len()}, nil
}

// matchPostings keeps postings whose title, employer or snippet contains at
// least one of the terms.
func matchPostings(items []*jobs.Posting, terms []string) []*jobs.Posting {
	kept := make([]*jobs.Posting, 0, len(items))
	for _, posting := range items {
		text := strings.ToLower(posting.Title + " " + posting.Employer + " " + posting.Snippet)
		for _, term := range terms {
			if strings.Contains(text, term) {
				kept = append(kept, posting)
				break
			}
		}
	}
	return kept
}

func splitTermWords(terms []string) []string {
	words := make([]string, 0, len(terms))
	for _, term := range terms {
		for _, word := range strings.Fields(term) {
			if len(word) > 2 {
				words = append(words, word)
			}
		}
	}
	return words
}
