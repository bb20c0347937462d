package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDescribeUsesKnownContainer(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><body>
		<div class="nav">Sign in</div>
		<div class="job-description"><p>Build distributed systems.</p><p>Go required.</p></div>
		<div class="footer">About us</div>
	</body></html>`)

	f := New("test-agent", zap.NewNop())
	got, err := f.Describe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if !strings.Contains(got, "Build distributed systems") || !strings.Contains(got, "Go required") {
		t.Fatalf("description missing container text: %q", got)
	}
	if strings.Contains(got, "Sign in") || strings.Contains(got, "About us") {
		t.Fatalf("description leaked chrome text: %q", got)
	}
}

func TestDescribeFallsBackToParagraphs(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><body>
		<h1>Platform Engineer</h1>
		<p>You will own the deployment pipeline.</p>
		<ul><li>Kubernetes experience</li></ul>
		<script>trackPageView()</script>
	</body></html>`)

	f := New("test-agent", zap.NewNop())
	got, err := f.Describe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if !strings.Contains(got, "deployment pipeline") || !strings.Contains(got, "Kubernetes experience") {
		t.Fatalf("fallback extraction incomplete: %q", got)
	}
	if strings.Contains(got, "trackPageView") {
		t.Fatalf("script content leaked into description: %q", got)
	}
}

func TestDescribeCapsLength(t *testing.T) {
	long := strings.Repeat("words and more words ", 1000)
	srv := serve(t, http.StatusOK, `<html><body><div class="job-description">`+long+`</div></body></html>`)

	f := New("test-agent", zap.NewNop())
	got, err := f.Describe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if len(got) > MaxDescriptionLength {
		t.Fatalf("description length %d exceeds cap %d", len(got), MaxDescriptionLength)
	}
}

func TestDescribeCapPreservesValidUTF8(t *testing.T) {
	// 3-byte runes guarantee the byte cap falls mid-rune.
	long := strings.Repeat("€", 2000)
	srv := serve(t, http.StatusOK, `<html><body><div class="job-description">`+long+`</div></body></html>`)

	f := New("test-agent", zap.NewNop())
	got, err := f.Describe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if len(got) > MaxDescriptionLength {
		t.Fatalf("description length %d exceeds cap %d", len(got), MaxDescriptionLength)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated description is not valid UTF-8")
	}
}

func TestDescribeUnreachable(t *testing.T) {
	srv := serve(t, http.StatusForbidden, "denied")

	f := New("test-agent", zap.NewNop())
	_, err := f.Describe(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}

	srv.Close()
	_, err = f.Describe(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable after shutdown, got %v", err)
	}
}
