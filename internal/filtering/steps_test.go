package filtering

import (
	"context"
	"testing"
	"time"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func daysAgo(days int) *time.Time {
	t := fixedNow().Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestRecencyFilterWindowBoundary(t *testing.T) {
	postings := &jobs.Postings{Items: []*jobs.Posting{
		{Title: "fresh", PostedAt: daysAgo(29)},
		{Title: "stale", PostedAt: daysAgo(31)},
		{Title: "undated"},
	}}

	filter := NewRecency(30*24*time.Hour, fixedNow)
	next, step, err := filter.Apply(context.Background(), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", step.Dropped)
	}
	if next.FindByKey((&jobs.Posting{Title: "stale"}).Key()) != nil {
		t.Fatalf("expected 31-day-old posting to be dropped")
	}
	if next.FindByKey((&jobs.Posting{Title: "fresh"}).Key()) == nil {
		t.Fatalf("expected 29-day-old posting to be retained")
	}
	if next.FindByKey((&jobs.Posting{Title: "undated"}).Key()) == nil {
		t.Fatalf("expected posting with unknown date to be retained")
	}
}

func TestLocationTypeFilter(t *testing.T) {
	postings := func() *jobs.Postings {
		return &jobs.Postings{Items: []*jobs.Posting{
			{Title: "a", LocationType: jobs.LocationRemote},
			{Title: "b", LocationType: jobs.LocationOnsite},
			{Title: "c", LocationType: jobs.LocationUnspecified},
		}}
	}

	remote := NewLocationType(jobs.LocationRemote)
	next, _, err := remote.Apply(context.Background(), postings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Len() != 1 || next.Items[0].Title != "a" {
		t.Fatalf("specific-type filter should exclude unspecified postings, got %d left", next.Len())
	}

	any := NewLocationType(jobs.LocationAny)
	next, _, err = any.Apply(context.Background(), postings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Len() != 3 {
		t.Fatalf("any filter should pass all postings, got %d", next.Len())
	}
}

func TestKeywordFilterSkipsSmallResultSets(t *testing.T) {
	postings := &jobs.Postings{Items: []*jobs.Posting{
		{Title: "Gardener"},
		{Title: "Baker"},
	}}

	filter := NewKeywords([]string{"engineer"})
	next, _, err := filter.Apply(context.Background(), postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Len() != 2 {
		t.Fatalf("expected small result sets to bypass keyword filtering, got %d", next.Len())
	}
}

func TestKeywordFilterMatchesTitle(t *testing.T) {
	items := make([]*jobs.Posting, 0, 8)
	for _, title := range []string{
		"Data Engineer", "Platform Engineer", "Engineer, Data", "Software Engineer",
		"Gardener", "Baker", "Chef", "Florist",
	} {
		items = append(items, &jobs.Posting{Title: title})
	}

	filter := NewKeywords([]string{"engineer"})
	next, step, err := filter.Apply(context.Background(), &jobs.Postings{Items: items})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Len() != 4 {
		t.Fatalf("expected 4 matching postings, got %d (dropped %d)", next.Len(), step.Dropped)
	}
}

func TestKeywordFilterRelaxesToWordMatch(t *testing.T) {
	items := []*jobs.Posting{
		{Title: "Data Engineer"},
		{Title: "Analyst", Employer: "Data Engineer Recruitment Ltd"},
		{Title: "Platform Engineer"},
		{Title: "Software Engineer"},
		{Title: "Engineering Manager"},
		{Title: "Data Scientist"},
		{Title: "Gardener"},
		{Title: "Baker"},
		{Title: "Chef"},
		{Title: "Florist"},
		{Title: "Barista"},
		{Title: "Plumber"},
	}

	filter := NewKeywords([]string{"data engineer"})
	next, step, err := filter.Apply(context.Background(), &jobs.Postings{Items: items})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two strict matches out of twelve triggers relaxation, which widens to
	// the words "data" and "engineer".
	if next.Len() != 6 {
		t.Fatalf("expected 6 postings after relaxed matching, got %d (dropped %d)", next.Len(), step.Dropped)
	}
	if next.FindByKey((&jobs.Posting{Title: "Analyst", Employer: "Data Engineer Recruitment Ltd"}).Key()) == nil {
		t.Fatalf("relaxation must not drop a posting the strict pass kept")
	}
	if next.FindByKey((&jobs.Posting{Title: "Data Scientist"}).Key()) == nil {
		t.Fatalf("expected relaxed pass to recover single-word matches")
	}
}

func TestRunChainsSteps(t *testing.T) {
	postings := &jobs.Postings{Items: []*jobs.Posting{
		{Title: "fresh remote", PostedAt: daysAgo(2), LocationType: jobs.LocationRemote},
		{Title: "stale remote", PostedAt: daysAgo(45), LocationType: jobs.LocationRemote},
		{Title: "fresh onsite", PostedAt: daysAgo(2), LocationType: jobs.LocationOnsite},
	}}

	steps := []Filter{
		NewRecency(30*24*time.Hour, fixedNow),
		NewLocationType(jobs.LocationRemote),
	}

	out, err := Run(context.Background(), nil, steps, postings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 || out.Items[0].Title != "fresh remote" {
		t.Fatalf("expected only the fresh remote posting, got %d items", out.Len())
	}
}
