package database

import (
	"context"
	"database/sql"
	"fmt"

	"hackerbrief/internal/model"
)

// SummaryRepository persists per-user post summaries. Rows are unique per
// (post, user, prompt type); user_id is NOT NULL (backfilled and constrained
// at the migration layer before this service assumes it).
type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Create inserts a summary. The unique constraint makes a second write for
// the same (post, user, prompt type) a no-op rather than a duplicate.
func (r *SummaryRepository) Create(ctx context.Context, s *model.Summary) error {
	query := `
		INSERT INTO summaries (post_id, user_id, prompt_type, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id, prompt_type) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, s.PostID, s.UserID, s.PromptType, s.Body).
		Scan(&s.ID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		// conflict path: the row already existed
		return nil
	}
	if err != nil {
		return fmt.Errorf("create summary post=%d user=%d: %w", s.PostID, s.UserID, err)
	}
	return nil
}

// FindByUserAndType returns all summaries a user has for a prompt type,
// ascending by post id.
func (r *SummaryRepository) FindByUserAndType(ctx context.Context, userID int64, pt model.PromptType) ([]model.Summary, error) {
	query := `
		SELECT id, post_id, user_id, prompt_type, body, created_at
		FROM summaries
		WHERE user_id = $1 AND prompt_type = $2
		ORDER BY post_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pt)
	if err != nil {
		return nil, fmt.Errorf("find summaries user=%d type=%s: %w", userID, pt, err)
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var s model.Summary
		if err := rows.Scan(&s.ID, &s.PostID, &s.UserID, &s.PromptType, &s.Body, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

// LastSummaryPostID returns the highest post id the user has a summary for
// under the given prompt type, or 0 when the user has never been summarized.
func (r *SummaryRepository) LastSummaryPostID(ctx context.Context, userID int64, pt model.PromptType) (int64, error) {
	var id sql.NullInt64
	query := `SELECT MAX(post_id) FROM summaries WHERE user_id = $1 AND prompt_type = $2`
	if err := r.db.QueryRowContext(ctx, query, userID, pt).Scan(&id); err != nil {
		return 0, fmt.Errorf("last summary post id user=%d type=%s: %w", userID, pt, err)
	}
	return id.Int64, nil
}

// ExistsFor reports whether a summary exists for (post, user, prompt type).
func (r *SummaryRepository) ExistsFor(ctx context.Context, postID, userID int64, pt model.PromptType) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM summaries WHERE post_id = $1 AND user_id = $2 AND prompt_type = $3)`
	if err := r.db.QueryRowContext(ctx, query, postID, userID, pt).Scan(&ok); err != nil {
		return false, fmt.Errorf("summary exists post=%d user=%d: %w", postID, userID, err)
	}
	return ok, nil
}
