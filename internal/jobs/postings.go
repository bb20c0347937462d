package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Postings is an ordered collection of canonical postings.
type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByKey(key string) *Posting {
	for _, posting := range p.Items {
		if posting.Key() == key {
			return posting
		}
	}
	return nil
}

// Dedupe collapses postings sharing an identity key, preserving the order of
// first appearance. Later duplicates are merged into the surviving record.
func (p *Postings) Dedupe() *Postings {
	seen := make(map[string]*Posting, len(p.Items))
	out := make([]*Posting, 0, len(p.Items))

	for _, posting := range p.Items {
		key := posting.Key()
		if existing, ok := seen[key]; ok {
			existing.Merge(posting)
			continue
		}
		if len(posting.Sources) == 0 && posting.Source != "" {
			posting.Sources = []string{posting.Source}
		}
		seen[key] = posting
		out = append(out, posting)
	}

	return &Postings{Items: out}
}

// Rank orders postings by posted date descending. Postings with an unknown
// date sort after all dated postings; ties keep their merge order.
func (p *Postings) Rank() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		a, b := p.Items[i].PostedAt, p.Items[j].PostedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// ReportByEmployer groups posting summaries under "Employer" keys, for
// human-readable reporting from the CLI.
func (p *Postings) ReportByEmployer() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		entry := map[string]string{
			"title":    posting.Title,
			"url":      posting.URL,
			"location": posting.Location,
			"snippet":  posting.Snippet,
		}
		if posting.PostedAt != nil {
			entry["posted"] = posting.PostedAt.Format("2006-01-02")
		}
		report[posting.Employer] = append(report[posting.Employer], entry)
	}
	return report
}

// DumpToTmpFile writes the collection as indented JSON to a temp file and
// returns its name.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Label renders a one-line summary in "title / employer / location / url" form.
func (p *Posting) Label() string {
	return fmt.Sprintf("%s / %s / %s / %s", p.Title, p.Employer, p.Location, p.URL)
}
