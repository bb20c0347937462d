package provider

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// Filter is the structured search filter produced by the external query
// intent parser. Adapters translate it into source-native query parameters.
type Filter struct {
	Titles       []string          `mapstructure:"titles"`
	Location     string            `mapstructure:"location"`
	LocationType jobs.LocationType `mapstructure:"location-type"`
	DaysAgo      int               `mapstructure:"days-ago"`
}

// Query joins the filter titles into a single free-text query string.
func (f Filter) Query() string {
	if len(f.Titles) == 0 {
		return ""
	}
	return strings.Join(f.Titles, " ")
}

// Remote reports whether the filter requests remote-only results.
func (f Filter) Remote() bool {
	return f.LocationType == jobs.LocationRemote
}

// Fingerprint returns a stable cache key component for the filter. Title
// order does not affect the fingerprint.
func (f Filter) Fingerprint() string {
	titles := make([]string, 0, len(f.Titles))
	for _, t := range f.Titles {
		titles = append(titles, strings.ToLower(strings.TrimSpace(t)))
	}
	sort.Strings(titles)

	key := fmt.Sprintf("%s_%s_%s_%d",
		strings.Join(titles, "-"),
		string(f.LocationType),
		strings.ToLower(strings.TrimSpace(f.Location)),
		f.DaysAgo,
	)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

// Provider is one external listing source. Search returns normalized
// postings; a failed source returns an error and contributes nothing.
type Provider interface {
	Name() string
	Search(ctx context.Context, f Filter) ([]*jobs.Posting, error)
}

// Region selects which adapter set is enabled.
type Region string

const (
	RegionUS Region = "us"
	RegionUK Region = "uk"
)

// ForRegion returns the adapters enabled for a region, in their merge order.
func ForRegion(region Region, c *Client) ([]Provider, error) {
	switch region {
	case RegionUS:
		return []Provider{
			NewIndeed(c, "www.indeed.com"),
			NewLinkedIn(c),
			NewGlassdoor(c),
			NewDice(c),
			NewZipRecruiter(c),
		}, nil
	case RegionUK:
		return []Provider{
			NewIndeed(c, "uk.indeed.com"),
			NewLinkedIn(c),
			NewGlassdoor(c),
			NewReed(c),
			NewCVLibrary(c),
			NewTotalJobs(c),
			NewJobserve(c),
		}, nil
	default:
		return nil, fmt.Errorf("unknown region: %s", region)
	}
}
