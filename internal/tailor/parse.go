package tailor

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	beginMarker = "---BEGIN CV---"
	endMarker   = "---END CV---"
)

// scorePattern accepts the label variants models actually emit: "ATS SCORE:
// 87", "ATS_SCORE=87/100", "SCORE: 87".
var scorePattern = regexp.MustCompile(`(?im)^\s*(?:ATS[ _]SCORE|SCORE)\s*[:=]?\s*(\d{1,3})(?:\s*/\s*100)?\s*$`)

// feedbackHeadings open blocks whose bullet lines are fed back into the next
// attempt's prompt.
var feedbackHeadings = []string{"IMPROVEMENTS:", "VIOLATIONS:"}

// parseResponse extracts the tailored document, score, and feedback from a
// raw model response. The raw text is always preserved on the attempt.
func parseResponse(raw string) Attempt {
	attempt := Attempt{Raw: raw, Outcome: ParseFailed}

	doc, found := extractDocument(raw)
	if !found {
		return attempt
	}
	attempt.Document = doc
	attempt.Outcome = ParsePartial

	if score, ok := extractScore(raw); ok {
		attempt.Score = score
		attempt.Scored = true
		attempt.Outcome = ParseFull
	}

	attempt.Feedback = extractFeedback(raw)
	return attempt
}

// extractDocument prefers the explicit marker pair. When only the begin
// marker survives it takes everything after it, minus any trailing score
// block, so a truncated response still yields a usable draft.
func extractDocument(raw string) (string, bool) {
	begin := strings.Index(raw, beginMarker)
	if begin == -1 {
		return "", false
	}
	body := raw[begin+len(beginMarker):]

	if end := strings.Index(body, endMarker); end != -1 {
		body = body[:end]
	} else if loc := scorePattern.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", false
	}
	return body, true
}

func extractScore(raw string) (int, bool) {
	m := scorePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	score, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// extractFeedback collects bullet lines from IMPROVEMENTS/VIOLATIONS blocks.
// A block ends at a blank line or the next non-bullet line.
func extractFeedback(raw string) []string {
	var feedback []string
	lines := strings.Split(raw, "\n")

	for i := 0; i < len(lines); i++ {
		if !isFeedbackHeading(lines[i]) {
			continue
		}
		for i++; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
				i--
				break
			}
			item := strings.TrimSpace(strings.TrimLeft(line, "-* "))
			if item != "" {
				feedback = append(feedback, item)
			}
		}
	}

	return feedback
}

func isFeedbackHeading(line string) bool {
	line = strings.ToUpper(strings.TrimSpace(line))
	for _, heading := range feedbackHeadings {
		if strings.HasPrefix(line, heading) {
			return true
		}
	}
	return false
}
