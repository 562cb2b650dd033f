package model

import (
	"fmt"
	"strings"
)

// ContentKind is one encoding stage of a post's body.
type ContentKind string

const (
	KindHTML     ContentKind = "html"
	KindText     ContentKind = "text"
	KindMarkdown ContentKind = "markdown"
)

// Kinds lists all content kinds in storage order.
func Kinds() []ContentKind {
	return []ContentKind{KindHTML, KindText, KindMarkdown}
}

// ParseContentKind validates a kind string.
func ParseContentKind(s string) (ContentKind, error) {
	switch k := ContentKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindHTML, KindText, KindMarkdown:
		return k, nil
	default:
		return "", fmt.Errorf("unknown content kind: %q", s)
	}
}

// ContentAvailability records which content kinds were successfully stored
// for a post.
type ContentAvailability struct {
	HTML     bool `json:"html"`
	Text     bool `json:"text"`
	Markdown bool `json:"markdown"`
}

// Any reports whether at least one content kind is available.
func (a ContentAvailability) Any() bool {
	return a.HTML || a.Text || a.Markdown
}

// Set marks the given kind as available.
func (a *ContentAvailability) Set(k ContentKind) {
	switch k {
	case KindHTML:
		a.HTML = true
	case KindText:
		a.Text = true
	case KindMarkdown:
		a.Markdown = true
	}
}

// Has reports whether the given kind is available.
func (a ContentAvailability) Has(k ContentKind) bool {
	switch k {
	case KindHTML:
		return a.HTML
	case KindText:
		return a.Text
	case KindMarkdown:
		return a.Markdown
	default:
		return false
	}
}
