package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/extract"
	"hackerbrief/internal/hackernews"
	"hackerbrief/internal/metrics"
	"hackerbrief/internal/model"
)

// ErrRunInProgress is returned by TryRun when a prior run has not finished.
var ErrRunInProgress = errors.New("collector: run already in progress")

// maxRunErrors bounds the per-item error list attached to a run result.
const maxRunErrors = 20

// FeedClient fetches candidate ids and item details from the source.
type FeedClient interface {
	TopItemIDs(ctx context.Context) ([]int64, error)
	GetItem(ctx context.Context, id int64) (hackernews.Item, error)
}

// PostStore is the metadata persistence side of a run.
type PostStore interface {
	Upsert(ctx context.Context, post *model.Post) error
	UpdateContent(ctx context.Context, sourceID int64, avail model.ContentAvailability, contentLength int) error
}

// ContentExtractor turns an article URL into the three content stages.
type ContentExtractor interface {
	Extract(ctx context.Context, rawURL, title string) (extract.Result, error)
}

// ItemError is one per-item failure from an otherwise-successful run.
type ItemError struct {
	SourceID int64
	Stage    string // "fetch" or "extract"
	Err      error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d %s: %v", e.SourceID, e.Stage, e.Err)
}

// RunResult summarizes one collection run. A run with per-item errors is
// still a successful run; only a list-fetch failure fails the run itself.
type RunResult struct {
	Fetched   int // item details successfully fetched
	Persisted int // posts upserted
	Extracted int // posts with at least one content kind stored
	Errors    []ItemError
}

// Collector is the scheduled collection job: fetch candidate ids, resolve
// details, filter by score, persist metadata, then extract and store content.
// Zero-value thresholds come from the corresponding config defaults.
type Collector struct {
	Feed             FeedClient
	Posts            PostStore
	Store            contentstore.Store
	Extractor        ContentExtractor
	Metrics          *metrics.Collector // optional
	ScoreThreshold   int
	Limit            int
	FetchConcurrency int
	RunTimeout       time.Duration
	ExtractTimeout   time.Duration

	running atomic.Bool
}

// TryRun executes one run unless a prior run is still in flight, in which
// case it returns ErrRunInProgress immediately.
func (c *Collector) TryRun(ctx context.Context) (RunResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return RunResult{}, ErrRunInProgress
	}
	defer c.running.Store(false)
	return c.run(ctx)
}

func (c *Collector) run(ctx context.Context) (RunResult, error) {
	start := time.Now()
	if c.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.RunTimeout)
		defer cancel()
	}

	slog.Info("collector: fetching candidate list")
	ids, err := c.Feed.TopItemIDs(ctx)
	if err != nil {
		// run-level failure: no side effects yet
		c.observeRun("failure", start, RunResult{})
		return RunResult{}, fmt.Errorf("collector: fetch list: %w", err)
	}

	slog.Info("collector: fetching item details", "candidates", len(ids))
	items, fetchErrs := c.fetchDetails(ctx, ids)

	var res RunResult
	res.Fetched = len(items)
	res.Errors = fetchErrs

	kept := c.filter(items)
	slog.Info("collector: filtered candidates", "fetched", len(items), "kept", len(kept))

	for _, it := range kept {
		if ctx.Err() != nil {
			break
		}
		post := convertItem(it)
		if err := c.Posts.Upsert(ctx, &post); err != nil {
			res.addError(ItemError{SourceID: it.ID, Stage: "persist", Err: err})
			slog.Error("collector: persist failed", "source_id", it.ID, "error", err)
			continue
		}
		res.Persisted++

		if c.extractAndStore(ctx, it, &res) {
			res.Extracted++
		}
	}

	slog.Info("collector: run complete",
		"persisted", res.Persisted,
		"extracted", res.Extracted,
		"errors", len(res.Errors),
		"duration", time.Since(start).Round(time.Millisecond))
	c.observeRun("success", start, res)
	return res, nil
}

// fetchDetails resolves ids concurrently with a bounded worker pool,
// preserving the list's order in the result. Individual failures land in the
// error list; they never abort the run.
func (c *Collector) fetchDetails(ctx context.Context, ids []int64) ([]hackernews.Item, []ItemError) {
	workers := c.FetchConcurrency
	if workers <= 0 {
		workers = 8
	}
	type slot struct {
		item hackernews.Item
		err  error
	}
	out := make([]slot, len(ids))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, id := range ids {
		i, id := i, id
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			it, err := c.Feed.GetItem(ctx, id)
			out[i] = slot{item: it, err: err}
		}()
	}
	wg.Wait()

	items := make([]hackernews.Item, 0, len(ids))
	var errs []ItemError
	for i, s := range out {
		if s.err != nil {
			if len(errs) < maxRunErrors {
				errs = append(errs, ItemError{SourceID: ids[i], Stage: "fetch", Err: s.err})
			}
			slog.Error("collector: fetch item failed", "source_id", ids[i], "error", s.err)
			continue
		}
		items = append(items, s.item)
	}
	return items, errs
}

func (c *Collector) filter(items []hackernews.Item) []hackernews.Item {
	threshold := c.ScoreThreshold
	limit := c.Limit
	if limit <= 0 {
		limit = 64
	}
	kept := make([]hackernews.Item, 0, len(items))
	for _, it := range items {
		if it.Score < threshold {
			continue
		}
		kept = append(kept, it)
		if len(kept) >= limit {
			break
		}
	}
	return kept
}

// extractAndStore fetches the article body and stores each content kind that
// comes out of extraction. Metadata and content are independent steps: a post
// persisted without content is a normal, recoverable state, and a later run
// fills in the missing kinds.
func (c *Collector) extractAndStore(ctx context.Context, it hackernews.Item, res *RunResult) bool {
	ectx := ctx
	if c.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, c.ExtractTimeout)
		defer cancel()
	}
	extracted, err := c.Extractor.Extract(ectx, it.PageURL(), it.Title)
	if err != nil {
		res.addError(ItemError{SourceID: it.ID, Stage: "extract", Err: err})
		slog.Error("collector: extract failed", "source_id", it.ID, "url", it.PageURL(), "error", err)
		return false
	}

	var avail model.ContentAvailability
	for _, stage := range []struct {
		kind    model.ContentKind
		payload []byte
	}{
		{model.KindHTML, extracted.HTML},
		{model.KindText, extracted.Text},
		{model.KindMarkdown, extracted.Markdown},
	} {
		if len(stage.payload) == 0 {
			continue
		}
		if err := c.Store.Put(ctx, it.ID, stage.kind, stage.payload); err != nil {
			res.addError(ItemError{SourceID: it.ID, Stage: "extract", Err: err})
			slog.Error("collector: store put failed", "source_id", it.ID, "kind", stage.kind, "error", err)
			continue
		}
		avail.Set(stage.kind)
		if c.Metrics != nil {
			c.Metrics.ObservePut(string(stage.kind))
		}
	}
	if !avail.Any() {
		return false
	}
	if err := c.Posts.UpdateContent(ctx, it.ID, avail, len(extracted.Text)); err != nil {
		res.addError(ItemError{SourceID: it.ID, Stage: "persist", Err: err})
		slog.Error("collector: update content flags failed", "source_id", it.ID, "error", err)
	}
	return true
}

func (r *RunResult) addError(e ItemError) {
	if len(r.Errors) < maxRunErrors {
		r.Errors = append(r.Errors, e)
	}
}

func (c *Collector) observeRun(outcome string, start time.Time, res RunResult) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.ObserveRun(outcome, time.Since(start), res.Persisted, len(res.Errors))
}

func convertItem(it hackernews.Item) model.Post {
	return model.Post{
		SourceID:     it.ID,
		Type:         it.Type,
		Title:        it.Title,
		Author:       it.By,
		URL:          it.PageURL(),
		Score:        it.Score,
		CommentCount: it.CommentCount(),
		CollectedAt:  time.Now().UTC(),
	}
}
