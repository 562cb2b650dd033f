package hackernews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hackerbrief/internal/retry"
)

// ErrNotFound is returned when the source has no item for the requested id.
var ErrNotFound = errors.New("hackernews: item not found")

// Client is a minimal Hacker News API client.
// Docs: https://github.com/HackerNews/API
type Client struct {
	baseAPI string
	client  *http.Client
	policy  retry.Policy
}

// NewClient creates a new Hacker News client. baseAPI should be something like
// "https://hacker-news.firebaseio.com/v0". If empty, it defaults to the v0 endpoint.
func NewClient(baseAPI string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseAPI) == "" {
		baseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseAPI: strings.TrimRight(baseAPI, "/"),
		client:  &http.Client{Timeout: timeout},
		policy:  retry.DefaultPolicy(),
	}
}

// SetRetryPolicy overrides the default backoff policy.
func (c *Client) SetRetryPolicy(p retry.Policy) { c.policy = p }

// Item mirrors the subset of HN item fields the collector cares about.
type Item struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"` // story, job, ask, show, poll, etc.
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Time        int64  `json:"time"`
	Kids        []int  `json:"kids"`
	Descendants int    `json:"descendants"`
	Score       int    `json:"score"`
}

// CommentCount derives a comment figure from descendants or direct kids.
func (it Item) CommentCount() int {
	if it.Descendants > len(it.Kids) {
		return it.Descendants
	}
	return len(it.Kids)
}

// PageURL returns the item's external URL, falling back to the HN discussion
// page for text-only posts (Ask HN etc.).
func (it Item) PageURL() string {
	u := strings.TrimSpace(it.URL)
	if u == "" {
		return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", it.ID)
	}
	return u
}

// TopItemIDs fetches the current top stories list, newest ranking first.
func (c *Client) TopItemIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := retry.Do(ctx, c.policy, func() error {
		return c.getJSON(ctx, c.baseAPI+"/topstories.json", &ids)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetItem fetches a single item by id. Returns ErrNotFound when the source
// has no such item (the API answers "null" for unknown ids).
func (c *Client) GetItem(ctx context.Context, id int64) (Item, error) {
	var it *Item
	endpoint := fmt.Sprintf("%s/item/%d.json", c.baseAPI, id)
	err := retry.Do(ctx, c.policy, func() error {
		return c.getJSON(ctx, endpoint, &it)
	})
	if err != nil {
		return Item{}, err
	}
	if it == nil {
		return Item{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return *it, nil
}

// getJSON performs one GET and decodes the body. Network failures and 5xx
// responses are transient; anything else fails the call outright.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return retry.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return retry.Transient(fmt.Errorf("hackernews: %s status %d", endpoint, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("hackernews: %s status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
