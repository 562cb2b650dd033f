package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hackerbrief/internal/ai"
	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/markdown"
	"hackerbrief/internal/model"
	"hackerbrief/internal/window"
)

// UserSource lists the users the digest pipeline should evaluate.
type UserSource interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// SummaryWriter records generated summaries; creating one advances the
// user's watermark for the prompt type.
type SummaryWriter interface {
	Create(ctx context.Context, s *model.Summary) error
}

// DigestBuilder periodically runs a windowing pass per user, summarizes the
// eligible posts, records the summaries, and writes a markdown digest file.
type DigestBuilder struct {
	Engine     *window.Engine
	Users      UserSource
	Prefs      window.PreferenceSource
	Summaries  SummaryWriter
	Store      contentstore.Store
	Summarizer ai.Summarizer // optional; nil falls back to a text excerpt
	Interval   time.Duration
	OutputDir  string
}

func (w *DigestBuilder) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return err
	}
	// run immediately then on interval
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *DigestBuilder) runOnce(ctx context.Context) {
	users, err := w.Users.ListUserIDs(ctx)
	if err != nil {
		slog.Error("digest: list users failed", "error", err)
		return
	}
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		if err := w.buildForUser(ctx, userID); err != nil {
			slog.Error("digest: user pass failed", "user_id", userID, "error", err)
		}
	}
}

func (w *DigestBuilder) buildForUser(ctx context.Context, userID int64) error {
	prefs, err := w.Prefs.Preferences(ctx, userID)
	if err != nil {
		return err
	}
	pt := prefs.DetailLevel
	if pt == "" {
		pt = model.PromptConcise
	}

	posts, err := w.Engine.PostsForUser(ctx, userID, pt)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	var body strings.Builder
	written := 0
	for _, p := range posts {
		text, err := w.postText(ctx, p)
		if err != nil {
			slog.Error("digest: read content failed", "user_id", userID, "post_id", p.ID, "error", err)
			continue
		}
		summary, err := w.summarize(ctx, p, text, pt, prefs.Style, prefs.Language)
		if err != nil {
			slog.Error("digest: summarize failed", "user_id", userID, "post_id", p.ID, "error", err)
			continue
		}
		if err := w.Summaries.Create(ctx, &model.Summary{
			PostID:     p.ID,
			UserID:     userID,
			PromptType: pt,
			Body:       summary,
		}); err != nil {
			return err
		}
		fmt.Fprintf(&body, "## [%s](%s)\n\n%s\n\n", p.Title, p.URL, summary)
		written++
	}
	if written == 0 {
		return nil
	}

	now := time.Now().UTC()
	doc := markdown.Document{
		Frontmatter: map[string]any{
			"title":        fmt.Sprintf("Hacker News digest %s", now.Format("2006-01-02")),
			"user_id":      userID,
			"prompt_type":  string(pt),
			"generated_at": now.Format("2006-01-02 15:04"),
		},
		Body: body.String(),
	}
	rendered, err := markdown.Render(doc)
	if err != nil {
		return err
	}
	dir := filepath.Join(w.OutputDir, fmt.Sprintf("user-%d", userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("digest-%s.md", now.Format("20060102-1504")))
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return err
	}
	slog.Info("digest: written", "user_id", userID, "posts", written, "path", path)
	return nil
}

// postText prefers extracted plain text and falls back to the markdown stage.
func (w *DigestBuilder) postText(ctx context.Context, p model.Post) (string, error) {
	kind := model.KindText
	if !p.Content.Has(kind) {
		kind = model.KindMarkdown
	}
	b, err := w.Store.Get(ctx, p.SourceID, kind)
	if errors.Is(err, contentstore.ErrNotFound) && kind == model.KindText {
		b, err = w.Store.Get(ctx, p.SourceID, model.KindMarkdown)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (w *DigestBuilder) summarize(ctx context.Context, p model.Post, text string, pt model.PromptType, style, language string) (string, error) {
	if w.Summarizer == nil {
		return excerpt(text, 280), nil
	}
	return w.Summarizer.Summarize(ctx, p, text, pt, style, language)
}

// excerpt trims text to roughly n runes at a word boundary.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
