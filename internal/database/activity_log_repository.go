package database

import (
	"context"
	"database/sql"
	"fmt"

	"hackerbrief/internal/model"
)

// ActivityLogRepository appends rate/save facts. Rows are write-once; the
// only deletion path is cascading removal of the parent user or post.
type ActivityLogRepository struct {
	db *sql.DB
}

func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Append records one user action against a post.
func (r *ActivityLogRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	query := `
		INSERT INTO activity_log (user_id, post_id, action)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.PostID, entry.Action).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity user=%d post=%d: %w", entry.UserID, entry.PostID, err)
	}
	return nil
}

// ListByUser returns a user's actions, most recent first, capped at limit.
func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, post_id, action, created_at
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity user=%d: %w", userID, err)
	}
	defer rows.Close()

	var out []model.ActivityLog
	for rows.Next() {
		var e model.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.PostID, &e.Action, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return out, nil
}
