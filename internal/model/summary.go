package model

import (
	"fmt"
	"strings"
	"time"
)

// PromptType names a summarization style. Summaries are unique per
// (post, user, prompt type).
type PromptType string

const (
	PromptConcise  PromptType = "concise"
	PromptDetailed PromptType = "detailed"
	PromptZen      PromptType = "zen"
)

// ParsePromptType validates a prompt type string.
func ParsePromptType(s string) (PromptType, error) {
	switch p := PromptType(strings.ToLower(strings.TrimSpace(s))); p {
	case PromptConcise, PromptDetailed, PromptZen:
		return p, nil
	default:
		return "", fmt.Errorf("unknown prompt type: %q", s)
	}
}

// Summary is one generated summary of a post for a user.
type Summary struct {
	ID         int64      `json:"id"`
	PostID     int64      `json:"post_id"`
	UserID     int64      `json:"user_id"`
	PromptType PromptType `json:"prompt_type"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserPreferences holds the per-user knobs consumed by windowing and
// summarization. Empty Interests means no category filtering.
type UserPreferences struct {
	UserID      int64      `json:"user_id"`
	Interests   []string   `json:"interests"`
	DetailLevel PromptType `json:"detail_level"`
	Style       string     `json:"style"`
	Language    string     `json:"language"`
}
