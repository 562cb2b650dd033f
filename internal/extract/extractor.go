package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyBytes bounds how much of a page we will read; article pages past
// this size are truncated rather than rejected.
const maxBodyBytes = 2 << 20

// Result holds one article body at its three encoding stages.
type Result struct {
	HTML     []byte
	Text     []byte
	Markdown []byte
}

// Extractor fetches an article page and derives plain text and a
// summary-ready markdown rendering from its markup.
type Extractor struct {
	client *http.Client
}

// NewExtractor wires an HTTP client; a nil client gets a 20s-timeout default.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{client: client}
}

// Extract fetches the page at rawURL and returns all three content stages.
func (e *Extractor) Extract(ctx context.Context, rawURL, title string) (Result, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return Result{}, fmt.Errorf("extract: invalid url: %w", err)
	}
	html, err := e.fetch(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	text, err := ExtractText(html)
	if err != nil {
		return Result{}, err
	}
	md := RenderMarkdown(title, rawURL, text)
	return Result{HTML: html, Text: []byte(text), Markdown: []byte(md)}, nil
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("User-Agent", "hackerbrief/1.0")
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extract: fetch %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("extract: read body: %w", err)
	}
	return body, nil
}

// ExtractText strips markup down to readable plain text. Script, style, and
// chrome elements are dropped; block boundaries become newlines.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("extract: parse html: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	root := doc.Find("article")
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	var b strings.Builder
	root.Find("p, h1, h2, h3, h4, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" {
			return
		}
		b.WriteString(t)
		b.WriteString("\n\n")
	})
	out := strings.TrimSpace(b.String())
	if out == "" {
		// fallback for pages without block structure
		out = strings.TrimSpace(strings.Join(strings.Fields(root.Text()), " "))
	}
	return out, nil
}

// RenderMarkdown produces the summary-ready markdown stage: title heading,
// source link, then the extracted text as paragraphs.
func RenderMarkdown(title, rawURL, text string) string {
	var b strings.Builder
	title = strings.TrimSpace(title)
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if rawURL != "" {
		fmt.Fprintf(&b, "[source](%s)\n\n", rawURL)
	}
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	return b.String()
}
