package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hackerbrief/internal/model"

	"github.com/lib/pq"
)

// UserRepository reads per-user preferences. Preferences are written by the
// account-facing API, which is outside this service.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Preferences returns a user's preferences. A user without a row gets the
// zero preferences (no interest filtering, concise detail level).
func (r *UserRepository) Preferences(ctx context.Context, userID int64) (model.UserPreferences, error) {
	prefs := model.UserPreferences{UserID: userID, DetailLevel: model.PromptConcise}
	query := `
		SELECT interests, detail_level, style, language
		FROM user_preferences
		WHERE user_id = $1
	`
	var detail string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		pq.Array(&prefs.Interests), &detail, &prefs.Style, &prefs.Language,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("preferences user=%d: %w", userID, err)
	}
	if pt, perr := model.ParsePromptType(detail); perr == nil {
		prefs.DetailLevel = pt
	}
	return prefs, nil
}

// ListUserIDs returns the users the digest pipeline should evaluate.
func (r *UserRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM user_preferences ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}
