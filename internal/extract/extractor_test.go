package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><style>p { color: red }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Go Scheduler Internals</h1>
<p>The scheduler multiplexes goroutines onto OS threads.</p>
<script>trackPageView();</script>
<p>Work stealing keeps processors busy.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText([]byte(samplePage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Go Scheduler Internals", "multiplexes goroutines", "Work stealing"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	for _, drop := range []string{"trackPageView", "color: red", "Home", "Copyright"} {
		if strings.Contains(text, drop) {
			t.Errorf("text should not contain %q:\n%s", drop, text)
		}
	}
}

func TestExtractEndToEnd(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer s.Close()

	e := NewExtractor(&http.Client{Timeout: 2 * time.Second})
	res, err := e.Extract(context.Background(), s.URL, "Go Scheduler Internals")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.HTML) == 0 || len(res.Text) == 0 || len(res.Markdown) == 0 {
		t.Fatalf("expected all three stages populated: %+v", res)
	}
	md := string(res.Markdown)
	if !strings.HasPrefix(md, "# Go Scheduler Internals") {
		t.Errorf("markdown should start with the title heading:\n%s", md)
	}
	if !strings.Contains(md, "[source]("+s.URL+")") {
		t.Errorf("markdown should link the source:\n%s", md)
	}
}

func TestExtractRejectsBadURL(t *testing.T) {
	e := NewExtractor(nil)
	if _, err := e.Extract(context.Background(), "not a url", "t"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestExtractFailsOnServerError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer s.Close()

	e := NewExtractor(&http.Client{Timeout: 2 * time.Second})
	if _, err := e.Extract(context.Background(), s.URL, "t"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestRenderMarkdownWithoutTitle(t *testing.T) {
	md := RenderMarkdown("", "", "just text")
	if md != "just text\n" {
		t.Fatalf("got %q", md)
	}
}
