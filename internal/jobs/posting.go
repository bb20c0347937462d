package jobs

import (
	"strings"
	"time"
	"unicode"
)

// LocationType classifies where a role is performed.
type LocationType string

const (
	LocationRemote      LocationType = "remote"
	LocationHybrid      LocationType = "hybrid"
	LocationOnsite      LocationType = "onsite"
	LocationUnspecified LocationType = "unspecified"
	// LocationAny is not a posting attribute; it is the filter value that
	// admits every posting regardless of its location type.
	LocationAny LocationType = "any"
)

// Posting is the canonical job record normalized from one or more listing sources.
type Posting struct {
	Source       string       `json:"source"`
	SourceID     string       `json:"source_id,omitempty"`
	Title        string       `json:"title"`
	Employer     string       `json:"employer"`
	Location     string       `json:"location"`
	LocationType LocationType `json:"location_type"`
	URL          string       `json:"url"`
	PostedAt     *time.Time   `json:"posted_at,omitempty"`
	Snippet      string       `json:"snippet,omitempty"`
	// Sources lists every source that reported this posting after merging.
	Sources []string `json:"sources,omitempty"`
}

// Key returns the deduplication identity of the posting: the normalized
// title/employer/location triple, so the same role reported by two sources
// collapses into one record. Postings without enough text to normalize fall
// back to their source-native id.
func (p *Posting) Key() string {
	title := normalize(p.Title)
	employer := normalize(p.Employer)
	if title == "" && employer == "" {
		return p.Source + ":" + p.SourceID
	}
	return title + "|" + employer + "|" + normalize(p.Location)
}

// Merge folds another record for the same identity key into this posting.
// The first-seen URL is retained; a known posted date beats an unknown one,
// and the longer snippet wins. Contributing sources are unioned.
func (p *Posting) Merge(other *Posting) {
	if other == nil {
		return
	}

	if p.PostedAt == nil && other.PostedAt != nil {
		p.PostedAt = other.PostedAt
	}
	if len(other.Snippet) > len(p.Snippet) {
		p.Snippet = other.Snippet
	}
	if p.LocationType == LocationUnspecified && other.LocationType != LocationUnspecified {
		p.LocationType = other.LocationType
	}

	for _, src := range other.sources() {
		if !contains(p.Sources, src) {
			p.Sources = append(p.Sources, src)
		}
	}
}

func (p *Posting) sources() []string {
	if len(p.Sources) > 0 {
		return p.Sources
	}
	if p.Source != "" {
		return []string{p.Source}
	}
	return nil
}

// Age reports how long ago the posting was published, and whether the
// posted date is known at all.
func (p *Posting) Age(now time.Time) (time.Duration, bool) {
	if p.PostedAt == nil {
		return 0, false
	}
	return now.Sub(*p.PostedAt), true
}

// ParseLocationType maps a configured filter value onto a LocationType.
// Empty and unrecognized values admit everything.
func ParseLocationType(value string) LocationType {
	switch LocationType(strings.ToLower(strings.TrimSpace(value))) {
	case LocationRemote:
		return LocationRemote
	case LocationHybrid:
		return LocationHybrid
	case LocationOnsite:
		return LocationOnsite
	default:
		return LocationAny
	}
}

// DetectLocationType classifies a free-form location string.
func DetectLocationType(location string) LocationType {
	loc := strings.ToLower(location)
	if loc == "" {
		return LocationUnspecified
	}

	for _, kw := range []string{"remote", "anywhere", "wfh", "work from home"} {
		if strings.Contains(loc, kw) {
			return LocationRemote
		}
	}
	for _, kw := range []string{"hybrid", "flexible"} {
		if strings.Contains(loc, kw) {
			return LocationHybrid
		}
	}

	return LocationOnsite
}

// normalize lowercases, strips punctuation and collapses whitespace so that
// cosmetic differences between sources do not defeat deduplication.
func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '/':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
