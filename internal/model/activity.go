package model

import (
	"fmt"
	"strings"
	"time"
)

// ActivityAction is the kind of user action recorded in the activity log.
type ActivityAction string

const (
	ActionRateUp   ActivityAction = "rate_up"
	ActionRateDown ActivityAction = "rate_down"
	ActionSave     ActivityAction = "save"
)

// ParseActivityAction validates an action string.
func ParseActivityAction(s string) (ActivityAction, error) {
	switch a := ActivityAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionRateUp, ActionRateDown, ActionSave:
		return a, nil
	default:
		return "", fmt.Errorf("unknown activity action: %q", s)
	}
}

// ActivityLog is an append-only fact recording a rate/save action.
// Rows are written once and never mutated.
type ActivityLog struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	PostID    int64          `json:"post_id"`
	Action    ActivityAction `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
}
