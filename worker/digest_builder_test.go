package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/model"
	"hackerbrief/internal/window"
)

type fakeUsers struct{ ids []int64 }

func (f *fakeUsers) ListUserIDs(context.Context) ([]int64, error) { return f.ids, nil }

type fakePrefSource struct{}

func (fakePrefSource) Preferences(_ context.Context, userID int64) (model.UserPreferences, error) {
	return model.UserPreferences{UserID: userID, DetailLevel: model.PromptConcise}, nil
}

// memSummaries implements both the engine's read side and the builder's
// write side, so created summaries advance the watermark.
type memSummaries struct {
	mu   sync.Mutex
	rows []model.Summary
}

func (m *memSummaries) Create(_ context.Context, s *model.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.PostID == s.PostID && r.UserID == s.UserID && r.PromptType == s.PromptType {
			return nil
		}
	}
	s.ID = int64(len(m.rows) + 1)
	s.CreatedAt = time.Now()
	m.rows = append(m.rows, *s)
	return nil
}

func (m *memSummaries) LastSummaryPostID(_ context.Context, userID int64, pt model.PromptType) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int64
	for _, r := range m.rows {
		if r.UserID == userID && r.PromptType == pt && r.PostID > max {
			max = r.PostID
		}
	}
	return max, nil
}

func (m *memSummaries) FindByUserAndType(_ context.Context, userID int64, pt model.PromptType) ([]model.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Summary
	for _, r := range m.rows {
		if r.UserID == userID && r.PromptType == pt {
			out = append(out, r)
		}
	}
	return out, nil
}

type memPosts struct{ posts []model.Post }

func (m *memPosts) FindByIDRange(_ context.Context, low, high int64) ([]model.Post, error) {
	var out []model.Post
	for _, p := range m.posts {
		if p.ID >= low && p.ID <= high {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPosts) LatestID(context.Context) (int64, error) {
	if len(m.posts) == 0 {
		return 0, nil
	}
	return m.posts[len(m.posts)-1].ID, nil
}

type styledPrefs struct{ style string }

func (s styledPrefs) Preferences(_ context.Context, userID int64) (model.UserPreferences, error) {
	return model.UserPreferences{
		UserID:      userID,
		DetailLevel: model.PromptConcise,
		Style:       s.style,
		Language:    "en",
	}, nil
}

type fakeSummarizer struct {
	mu     sync.Mutex
	styles []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, p model.Post, _ string, _ model.PromptType, style, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.styles = append(f.styles, style)
	return "summary of " + p.Title, nil
}

func TestDigestBuilderPassesStyleToSummarizer(t *testing.T) {
	ctx := context.Background()
	store := contentstore.NewMemoryStore()
	posts := &memPosts{posts: []model.Post{{
		ID:            1,
		SourceID:      1001,
		Title:         "Post",
		URL:           "https://example.com",
		Score:         100,
		CollectedAt:   time.Now(),
		Content:       model.ContentAvailability{Text: true},
		ContentLength: 40,
	}}}
	if err := store.Put(ctx, 1001, model.KindText, []byte("body text")); err != nil {
		t.Fatal(err)
	}
	sums := &memSummaries{}
	prefs := styledPrefs{style: "dry and technical"}
	summarizer := &fakeSummarizer{}
	b := &DigestBuilder{
		Engine:     window.NewEngine(posts, sums, prefs, window.Config{GroupSize: 50, MaxPostsPerUser: 10}),
		Users:      &fakeUsers{ids: []int64{5}},
		Prefs:      prefs,
		Summaries:  sums,
		Store:      store,
		Summarizer: summarizer,
		OutputDir:  t.TempDir(),
	}
	b.runOnce(ctx)

	if len(summarizer.styles) != 1 || summarizer.styles[0] != "dry and technical" {
		t.Fatalf("summarizer styles = %v, want the user's style preference", summarizer.styles)
	}
	if len(sums.rows) != 1 || sums.rows[0].Body != "summary of Post" {
		t.Fatalf("unexpected summaries: %+v", sums.rows)
	}
}

func TestDigestBuilderWritesSummariesAndFile(t *testing.T) {
	ctx := context.Background()
	store := contentstore.NewMemoryStore()
	posts := &memPosts{}
	for id := int64(1); id <= 3; id++ {
		posts.posts = append(posts.posts, model.Post{
			ID:            id,
			SourceID:      id + 1000,
			Title:         "Post",
			URL:           "https://example.com",
			Score:         100,
			CollectedAt:   time.Now(),
			Content:       model.ContentAvailability{Text: true},
			ContentLength: 40,
		})
		if err := store.Put(ctx, id+1000, model.KindText, []byte("body text of the post, long enough to excerpt")); err != nil {
			t.Fatal(err)
		}
	}
	sums := &memSummaries{}
	eng := window.NewEngine(posts, sums, fakePrefSource{}, window.Config{GroupSize: 50, MaxPostsPerUser: 10})

	dir := t.TempDir()
	b := &DigestBuilder{
		Engine:    eng,
		Users:     &fakeUsers{ids: []int64{7}},
		Prefs:     fakePrefSource{},
		Summaries: sums,
		Store:     store,
		OutputDir: dir,
	}
	b.runOnce(ctx)

	if len(sums.rows) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(sums.rows))
	}
	last, _ := sums.LastSummaryPostID(ctx, 7, model.PromptConcise)
	if last != 3 {
		t.Fatalf("watermark = %d, want 3", last)
	}

	files, err := filepath.Glob(filepath.Join(dir, "user-7", "digest-*.md"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one digest file, got %v (%v)", files, err)
	}
	content, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "prompt_type: concise") {
		t.Errorf("digest missing frontmatter:\n%s", content)
	}

	// second pass with no new posts: watermark blocks re-delivery
	b.runOnce(ctx)
	if len(sums.rows) != 3 {
		t.Fatalf("second pass must not re-summarize, got %d rows", len(sums.rows))
	}
}
