package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hackerbrief/internal/model"
)

// ErrNoRows is returned by lookups that match nothing.
var ErrNoRows = errors.New("database: no rows")

// PostRepository persists collected item metadata in Postgres.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, source_id, type, title, author, url, score, comment_count,
	collected_at, has_html, has_text, has_markdown, content_length`

// Upsert stores a post keyed on source_id. Re-collecting the same source id
// updates the mutable fields in place and keeps the surrogate id stable, so a
// duplicate-key conflict never surfaces to the caller.
func (r *PostRepository) Upsert(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (source_id, type, title, author, url, score, comment_count,
			collected_at, has_html, has_text, has_markdown, content_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (source_id) DO UPDATE
		SET score = EXCLUDED.score,
			comment_count = EXCLUDED.comment_count,
			has_html = EXCLUDED.has_html OR posts.has_html,
			has_text = EXCLUDED.has_text OR posts.has_text,
			has_markdown = EXCLUDED.has_markdown OR posts.has_markdown,
			content_length = GREATEST(EXCLUDED.content_length, posts.content_length)
		RETURNING id, collected_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.SourceID,
		post.Type,
		post.Title,
		post.Author,
		post.URL,
		post.Score,
		post.CommentCount,
		post.CollectedAt,
		post.Content.HTML,
		post.Content.Text,
		post.Content.Markdown,
		post.ContentLength,
	).Scan(&post.ID, &post.CollectedAt)
	if err != nil {
		return fmt.Errorf("upsert post %d: %w", post.SourceID, err)
	}
	return nil
}

// UpdateContent records which content kinds were stored for a post and the
// extracted text length. Flags merge rather than overwrite: a kind stored by
// an earlier run stays true even when the current run failed to store it, and
// content_length never shrinks. The stored payloads outlive any single run,
// so a false-going flag would wrongly hide content that is still there.
func (r *PostRepository) UpdateContent(ctx context.Context, sourceID int64, avail model.ContentAvailability, contentLength int) error {
	query := `
		UPDATE posts
		SET has_html = has_html OR $2,
			has_text = has_text OR $3,
			has_markdown = has_markdown OR $4,
			content_length = GREATEST(content_length, $5)
		WHERE source_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, sourceID, avail.HTML, avail.Text, avail.Markdown, contentLength)
	if err != nil {
		return fmt.Errorf("update content %d: %w", sourceID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update content %d: %w", sourceID, ErrNoRows)
	}
	return nil
}

// FindBySourceID returns the post for an external id, or ErrNoRows.
func (r *PostRepository) FindBySourceID(ctx context.Context, sourceID int64) (model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE source_id = $1`
	p, err := scanPost(r.db.QueryRowContext(ctx, query, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, fmt.Errorf("post source_id %d: %w", sourceID, ErrNoRows)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post %d: %w", sourceID, err)
	}
	return p, nil
}

// FindByIDRange returns posts with surrogate id in [low, high], ascending.
// An empty result is normal.
func (r *PostRepository) FindByIDRange(ctx context.Context, low, high int64) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id BETWEEN $1 AND $2 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, low, high)
	if err != nil {
		return nil, fmt.Errorf("find posts [%d,%d]: %w", low, high, err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// LatestID returns the highest surrogate id, or 0 when no posts exist.
func (r *PostRepository) LatestID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM posts`).Scan(&id); err != nil {
		return 0, fmt.Errorf("latest post id: %w", err)
	}
	return id.Int64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID, &p.SourceID, &p.Type, &p.Title, &p.Author, &p.URL,
		&p.Score, &p.CommentCount, &p.CollectedAt,
		&p.Content.HTML, &p.Content.Text, &p.Content.Markdown,
		&p.ContentLength,
	)
	return p, err
}
