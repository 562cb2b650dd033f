package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"hackerbrief/internal/model"
)

// These tests run against the database named by TEST_DATABASE_URL and are
// skipped when it is unset, so the suite stays green without a running
// Postgres. Rows use nanosecond-derived ids to avoid clashing between runs.

func TestPostRepositoryUpsert(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	sourceID := time.Now().UnixNano()
	repo := NewPostRepository(db)

	p := model.Post{
		SourceID:     sourceID,
		Type:         "story",
		Title:        "A test story",
		Author:       "tester",
		URL:          "https://example.com/a",
		Score:        120,
		CommentCount: 4,
		CollectedAt:  time.Now(),
	}
	if err := repo.Upsert(ctx, &p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected surrogate id after upsert")
	}

	// Re-collecting the same source id must keep the surrogate id and update
	// the mutable fields.
	again := model.Post{
		SourceID:    sourceID,
		Type:        "story",
		Title:       "A test story",
		Author:      "tester",
		URL:         "https://example.com/a",
		Score:       250,
		CollectedAt: time.Now(),
	}
	if err := repo.Upsert(ctx, &again); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != p.ID {
		t.Fatalf("surrogate id changed on re-collect: %d != %d", again.ID, p.ID)
	}

	got, err := repo.FindBySourceID(ctx, sourceID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Score != 250 {
		t.Fatalf("score not updated: got %d", got.Score)
	}

	if err := repo.UpdateContent(ctx, sourceID, model.ContentAvailability{HTML: true, Text: true}, 512); err != nil {
		t.Fatalf("update content: %v", err)
	}
	got, err = repo.FindBySourceID(ctx, sourceID)
	if err != nil {
		t.Fatalf("find after content update: %v", err)
	}
	if !got.Content.HTML || !got.Content.Text || got.Content.Markdown {
		t.Fatalf("content flags wrong: %+v", got.Content)
	}
	if !got.Summarizable() {
		t.Fatal("expected post to be summarizable after content update")
	}

	// A later update merges: flags stored by an earlier run stay set and
	// content_length never shrinks.
	if err := repo.UpdateContent(ctx, sourceID, model.ContentAvailability{Markdown: true}, 100); err != nil {
		t.Fatalf("second content update: %v", err)
	}
	got, err = repo.FindBySourceID(ctx, sourceID)
	if err != nil {
		t.Fatalf("find after second content update: %v", err)
	}
	if !got.Content.HTML || !got.Content.Text || !got.Content.Markdown {
		t.Fatalf("flags regressed on merge: %+v", got.Content)
	}
	if got.ContentLength != 512 {
		t.Fatalf("content length shrank: got %d, want 512", got.ContentLength)
	}

	if err := repo.UpdateContent(ctx, sourceID+1, model.ContentAvailability{}, 0); !errors.Is(err, ErrNoRows) {
		t.Fatalf("expected ErrNoRows for unknown source id, got %v", err)
	}
}

func TestSummaryRepositoryWatermark(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	posts := NewPostRepository(db)
	summaries := NewSummaryRepository(db)
	userID := time.Now().UnixNano()

	var postIDs []int64
	for i := 0; i < 3; i++ {
		p := model.Post{
			SourceID:    time.Now().UnixNano() + int64(i),
			Type:        "story",
			Title:       "watermark test",
			CollectedAt: time.Now(),
		}
		if err := posts.Upsert(ctx, &p); err != nil {
			t.Fatalf("upsert post: %v", err)
		}
		postIDs = append(postIDs, p.ID)
	}

	last, err := summaries.LastSummaryPostID(ctx, userID, model.PromptConcise)
	if err != nil {
		t.Fatalf("last summary post id: %v", err)
	}
	if last != 0 {
		t.Fatalf("fresh user watermark should be 0, got %d", last)
	}

	for _, id := range postIDs[:2] {
		s := model.Summary{PostID: id, UserID: userID, PromptType: model.PromptConcise, Body: "short"}
		if err := summaries.Create(ctx, &s); err != nil {
			t.Fatalf("create summary: %v", err)
		}
	}
	// Duplicate create is a no-op, not an error.
	dup := model.Summary{PostID: postIDs[0], UserID: userID, PromptType: model.PromptConcise, Body: "other"}
	if err := summaries.Create(ctx, &dup); err != nil {
		t.Fatalf("duplicate create: %v", err)
	}

	last, err = summaries.LastSummaryPostID(ctx, userID, model.PromptConcise)
	if err != nil {
		t.Fatalf("last summary post id: %v", err)
	}
	if last != postIDs[1] {
		t.Fatalf("watermark = %d, want %d", last, postIDs[1])
	}

	// The watermark is per prompt type.
	last, err = summaries.LastSummaryPostID(ctx, userID, model.PromptZen)
	if err != nil {
		t.Fatalf("last summary post id (zen): %v", err)
	}
	if last != 0 {
		t.Fatalf("zen watermark should be 0, got %d", last)
	}

	ok, err := summaries.ExistsFor(ctx, postIDs[0], userID, model.PromptConcise)
	if err != nil || !ok {
		t.Fatalf("ExistsFor = %v, %v; want true", ok, err)
	}
	ok, err = summaries.ExistsFor(ctx, postIDs[2], userID, model.PromptConcise)
	if err != nil || ok {
		t.Fatalf("ExistsFor unsummarized post = %v, %v; want false", ok, err)
	}
}

func TestActivityLogAppendAndList(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	posts := NewPostRepository(db)
	p := model.Post{SourceID: time.Now().UnixNano(), Type: "story", Title: "activity test", CollectedAt: time.Now()}
	if err := posts.Upsert(ctx, &p); err != nil {
		t.Fatalf("upsert post: %v", err)
	}

	activity := NewActivityLogRepository(db)
	userID := time.Now().UnixNano()
	for _, a := range []model.ActivityAction{model.ActionRateUp, model.ActionSave} {
		e := model.ActivityLog{UserID: userID, PostID: p.ID, Action: a}
		if err := activity.Append(ctx, &e); err != nil {
			t.Fatalf("append %s: %v", a, err)
		}
		if e.ID == 0 || e.CreatedAt.IsZero() {
			t.Fatalf("append did not fill id/created_at: %+v", e)
		}
	}

	entries, err := activity.ListByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestUserPreferencesDefault(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	users := NewUserRepository(db)
	prefs, err := users.Preferences(ctx, time.Now().UnixNano())
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	if prefs.DetailLevel != model.PromptConcise {
		t.Fatalf("default detail level = %s, want concise", prefs.DetailLevel)
	}
	if len(prefs.Interests) != 0 {
		t.Fatalf("default interests should be empty, got %v", prefs.Interests)
	}
}
