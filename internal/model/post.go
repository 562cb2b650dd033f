package model

import "time"

// Post is a single item collected from the feed. SourceID is the id assigned
// by the external source (monotonically increasing, not contiguous); ID is the
// surrogate key assigned on first persist and never reused.
type Post struct {
	ID            int64               `json:"id"`
	SourceID      int64               `json:"source_id"`
	Type          string              `json:"type"`
	Title         string              `json:"title"`
	Author        string              `json:"author"`
	URL           string              `json:"url"`
	Score         int                 `json:"score"`
	CommentCount  int                 `json:"comment_count"`
	CollectedAt   time.Time           `json:"collected_at"`
	Content       ContentAvailability `json:"content"`
	ContentLength int                 `json:"content_length"`
}

// Summarizable reports whether the post has anything a summarizer can work
// with: at least one stored content kind and a non-zero extracted length.
func (p Post) Summarizable() bool {
	return p.Content.Any() && p.ContentLength > 0
}
