package window

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hackerbrief/internal/model"
)

var (
	// ErrInvalidWindow rejects negative or inverted window bounds before
	// any repository read.
	ErrInvalidWindow = errors.New("window: invalid bounds")
	// ErrInvalidPromptType rejects prompt types outside the supported set.
	ErrInvalidPromptType = errors.New("window: invalid prompt type")
)

// PostSource is the read-side post contract the engine depends on.
type PostSource interface {
	FindByIDRange(ctx context.Context, low, high int64) ([]model.Post, error)
	LatestID(ctx context.Context) (int64, error)
}

// SummarySource exposes a user's existing summaries.
type SummarySource interface {
	LastSummaryPostID(ctx context.Context, userID int64, pt model.PromptType) (int64, error)
	FindByUserAndType(ctx context.Context, userID int64, pt model.PromptType) ([]model.Summary, error)
}

// PreferenceSource exposes per-user eligibility knobs.
type PreferenceSource interface {
	Preferences(ctx context.Context, userID int64) (model.UserPreferences, error)
}

// Window is an inclusive id range. A window with High < Low is empty.
type Window struct {
	Low  int64
	High int64
}

// Empty reports whether the window contains no ids.
func (w Window) Empty() bool { return w.High < w.Low }

// Config tunes the engine.
type Config struct {
	GroupSize       int           // width of the generic lookback window
	MaxPostsPerUser int           // cap on one user's result list
	MinScore        int           // user-level score floor, 0 disables
	MaxPostAge      time.Duration // posts collected earlier are excluded, 0 = unbounded
}

// Engine computes, per user, the newly collected posts eligible for a fresh
// summarization pass. It is a pure function of repository reads plus the
// user's watermark; it never writes.
type Engine struct {
	posts     PostSource
	summaries SummarySource
	prefs     PreferenceSource
	cfg       Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex // serializes passes per (user, prompt type)
}

func NewEngine(posts PostSource, summaries SummarySource, prefs PreferenceSource, cfg Config) *Engine {
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = 50
	}
	if cfg.MaxPostsPerUser <= 0 {
		cfg.MaxPostsPerUser = 10
	}
	return &Engine{
		posts:     posts,
		summaries: summaries,
		prefs:     prefs,
		cfg:       cfg,
		locks:     make(map[string]*sync.Mutex),
	}
}

// GroupWindow returns the inclusive id range covering the most recent
// groupSize posts up to latestID, independent of any user. It bounds how far
// back a pass will look even for a user with no prior watermark.
func GroupWindow(latestID int64, groupSize int) (Window, error) {
	if latestID < 0 || groupSize < 0 {
		return Window{}, fmt.Errorf("%w: latest=%d group=%d", ErrInvalidWindow, latestID, groupSize)
	}
	if latestID == 0 || groupSize == 0 {
		return Window{Low: 1, High: 0}, nil // empty
	}
	low := latestID - int64(groupSize) + 1
	if low < 1 {
		low = 1
	}
	return Window{Low: low, High: latestID}, nil
}

// LastSummaryPostID returns the user's watermark for the prompt type:
// the highest post id already summarized, 0 when there is none.
func (e *Engine) LastSummaryPostID(ctx context.Context, userID int64, pt model.PromptType) (int64, error) {
	if _, err := model.ParsePromptType(string(pt)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPromptType, pt)
	}
	return e.summaries.LastSummaryPostID(ctx, userID, pt)
}

// PostsForUser runs one full windowing pass for (userID, pt) and returns the
// ordered candidate list, ascending by post id, capped at MaxPostsPerUser.
// An empty list is a normal outcome. Passes for the same (user, prompt type)
// serialize; passes for different users run concurrently.
func (e *Engine) PostsForUser(ctx context.Context, userID int64, pt model.PromptType) ([]model.Post, error) {
	if _, err := model.ParsePromptType(string(pt)); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPromptType, pt)
	}
	unlock := e.lock(userID, pt)
	defer unlock()

	latest, err := e.posts.LatestID(ctx)
	if err != nil {
		return nil, fmt.Errorf("window: latest id: %w", err)
	}
	win, err := GroupWindow(latest, e.cfg.GroupSize)
	if err != nil {
		return nil, err
	}
	if win.Empty() {
		return nil, nil
	}

	last, err := e.summaries.LastSummaryPostID(ctx, userID, pt)
	if err != nil {
		return nil, fmt.Errorf("window: watermark: %w", err)
	}
	// Never re-deliver below the watermark, even inside the generic window.
	if last+1 > win.Low {
		win.Low = last + 1
	}
	if win.Empty() {
		return nil, nil
	}

	candidates, err := e.posts.FindByIDRange(ctx, win.Low, win.High)
	if err != nil {
		return nil, fmt.Errorf("window: range [%d,%d]: %w", win.Low, win.High, err)
	}

	candidates, err = e.filterUnsummarized(ctx, candidates, userID, pt)
	if err != nil {
		return nil, err
	}

	prefs, err := e.prefs.Preferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("window: preferences: %w", err)
	}
	return e.filterForUser(candidates, prefs), nil
}

// filterUnsummarized drops candidates the user already has a summary for
// under this prompt type, preserving order.
func (e *Engine) filterUnsummarized(ctx context.Context, candidates []model.Post, userID int64, pt model.PromptType) ([]model.Post, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	existing, err := e.summaries.FindByUserAndType(ctx, userID, pt)
	if err != nil {
		return nil, fmt.Errorf("window: existing summaries: %w", err)
	}
	seen := make(map[int64]struct{}, len(existing))
	for _, s := range existing {
		seen[s.PostID] = struct{}{}
	}
	out := candidates[:0]
	for _, p := range candidates {
		if _, ok := seen[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// filterForUser applies user-level eligibility and the result cap. Posts with
// nothing to summarize (no content kind stored, zero extracted length) are
// excluded by policy: summarization has nothing to operate on.
func (e *Engine) filterForUser(candidates []model.Post, prefs model.UserPreferences) []model.Post {
	var out []model.Post
	cutoff := time.Time{}
	if e.cfg.MaxPostAge > 0 {
		cutoff = time.Now().Add(-e.cfg.MaxPostAge)
	}
	for _, p := range candidates {
		if !p.Summarizable() {
			continue
		}
		if e.cfg.MinScore > 0 && p.Score < e.cfg.MinScore {
			continue
		}
		if !cutoff.IsZero() && p.CollectedAt.Before(cutoff) {
			continue
		}
		if !matchesInterests(p, prefs.Interests) {
			continue
		}
		out = append(out, p)
		if len(out) >= e.cfg.MaxPostsPerUser {
			break
		}
	}
	return out
}

// matchesInterests is a case-insensitive substring match against title and
// type. No declared interests means everything matches.
func matchesInterests(p model.Post, interests []string) bool {
	if len(interests) == 0 {
		return true
	}
	title := strings.ToLower(p.Title)
	typ := strings.ToLower(p.Type)
	for _, in := range interests {
		in = strings.ToLower(strings.TrimSpace(in))
		if in == "" {
			continue
		}
		if strings.Contains(title, in) || typ == in {
			return true
		}
	}
	return false
}

func (e *Engine) lock(userID int64, pt model.PromptType) func() {
	key := fmt.Sprintf("%d:%s", userID, pt)
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}
