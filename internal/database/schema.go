package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	source_id BIGINT NOT NULL UNIQUE,
	type TEXT NOT NULL DEFAULT 'story',
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	score INT NOT NULL DEFAULT 0,
	comment_count INT NOT NULL DEFAULT 0,
	collected_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	has_html BOOLEAN NOT NULL DEFAULT FALSE,
	has_text BOOLEAN NOT NULL DEFAULT FALSE,
	has_markdown BOOLEAN NOT NULL DEFAULT FALSE,
	content_length INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id BIGINT PRIMARY KEY,
	interests TEXT[] NOT NULL DEFAULT '{}',
	detail_level TEXT NOT NULL DEFAULT 'concise',
	style TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT 'en'
);

CREATE TABLE IF NOT EXISTS summaries (
	id BIGSERIAL PRIMARY KEY,
	post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL,
	prompt_type TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (post_id, user_id, prompt_type)
);

CREATE INDEX IF NOT EXISTS idx_summaries_user_type ON summaries (user_id, prompt_type, post_id);

CREATE TABLE IF NOT EXISTS activity_log (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	action TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_activity_log_user ON activity_log (user_id, created_at DESC);
`

// EnsureSchema creates the tables and indexes if they do not exist. All
// statements are idempotent, so running it on every start is safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
