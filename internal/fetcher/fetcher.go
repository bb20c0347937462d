// Package fetcher retrieves a full job description from a posting URL and
// reduces the page to plain text suitable for prompt building.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrUnreachable is returned when the posting page could not be retrieved.
// Callers may fall back to the posting snippet.
var ErrUnreachable = errors.New("job description page unreachable")

const (
	// MaxDescriptionLength caps extracted text so a single verbose page
	// cannot blow up downstream prompts.
	MaxDescriptionLength = 5000

	defaultTimeout = 15 * time.Second
)

// Fetcher downloads posting pages. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

func New(userAgent string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Describe fetches the page at url and extracts the job description text.
// The result is whitespace-normalized and capped at MaxDescriptionLength.
func (f *Fetcher) Describe(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building description request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("description fetch failed", zap.String("url", url), zap.Error(err))
		return "", fmt.Errorf("%w: %s", ErrUnreachable, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("description fetch bad status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: %s returned %d", ErrUnreachable, url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing description page: %w", err)
	}

	return truncate(extract(doc), MaxDescriptionLength), nil
}

// truncate caps s at limit bytes without splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// descriptionMarkers are id/class substrings that commonly wrap the job
// description block on listing pages.
var descriptionMarkers = []string{
	"jobsearch-jobdescriptiontext",
	"job-description",
	"jobdescription",
	"description__text",
	"job-details",
	"jobdetails",
	"vacancy-description",
}

// extract walks the parsed document looking for a known description
// container first, then falls back to paragraph and list text, and finally
// to the whole body text.
func extract(doc *html.Node) string {
	if container := findContainer(doc); container != nil {
		return collapse(textOf(container))
	}

	var parts []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "li") {
			if t := collapse(textOf(n)); t != "" {
				parts = append(parts, t)
			}
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	return collapse(textOf(doc))
}

func findContainer(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "id" && attr.Key != "class" {
				continue
			}
			val := strings.ToLower(attr.Val)
			for _, marker := range descriptionMarkers {
				if strings.Contains(val, marker) {
					return n
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findContainer(c); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func textOf(n *html.Node) string {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
		b.WriteString(" ")
	}
	return b.String()
}

// collapse normalizes runs of whitespace to single spaces.
func collapse(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteRune(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
