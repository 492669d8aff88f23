package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"opsboard/internal/service/search"
)

// DebounceDelay is how long a query must sit unchanged before it fires.
const DebounceDelay = 300 * time.Millisecond

type SimilarProjectsResponse struct {
	ProjectID       int                     `json:"project_id"`
	SimilarProjects []search.SimilarProject `json:"similar_projects"`
}

type DecisionPatternsResponse struct {
	Query            string                   `json:"query"`
	DecisionPatterns []search.DecisionPattern `json:"decision_patterns"`
}

// Search runs a unified search. Queries shorter than search.MinQueryLength
// are rejected by the server with a 400.
func (c *Client) Search(ctx context.Context, query string, contentTypes []string, limit int) (*search.UnifiedResponse, error) {
	q := url.Values{"q": []string{query}}
	for _, t := range contentTypes {
		q.Add("types", t)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp search.UnifiedResponse
	if err := c.get(ctx, "/search/", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SimilarProjects(ctx context.Context, projectID, limit int) (*SimilarProjectsResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp SimilarProjectsResponse
	if err := c.get(ctx, fmt.Sprintf("/search/similar-projects/%d", projectID), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DecisionPatterns(ctx context.Context, query string, limit int) (*DecisionPatternsResponse, error) {
	q := url.Values{"q": []string{query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp DecisionPatternsResponse
	if err := c.get(ctx, "/search/decision-patterns", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ProjectSuggestions(ctx context.Context, projectID int) (*search.Suggestions, error) {
	var s search.Suggestions
	if err := c.get(ctx, fmt.Sprintf("/search/suggestions/%d", projectID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SearchDebouncer coalesces keystroke-driven queries: a query fires only
// after it has been stable for the debounce delay, queries below the minimum
// length cancel whatever is pending, and a late response for a superseded
// query is dropped.
type SearchDebouncer struct {
	client *Client
	minLen int
	delay  time.Duration
	fetch  func(ctx context.Context, query string) (any, error)
	onDone func(query string, result any, err error)

	mu    sync.Mutex
	timer *time.Timer
	seq   int
}

// NewSearchDebouncer debounces unified searches. onDone receives a
// *search.UnifiedResponse on success.
func (c *Client) NewSearchDebouncer(contentTypes []string, limit int, onDone func(query string, result any, err error)) *SearchDebouncer {
	return &SearchDebouncer{
		client: c,
		minLen: search.MinQueryLength,
		delay:  DebounceDelay,
		fetch: func(ctx context.Context, query string) (any, error) {
			return c.Search(ctx, query, contentTypes, limit)
		},
		onDone: onDone,
	}
}

// NewDecisionPatternDebouncer debounces decision pattern lookups. onDone
// receives a *DecisionPatternsResponse on success.
func (c *Client) NewDecisionPatternDebouncer(limit int, onDone func(query string, result any, err error)) *SearchDebouncer {
	return &SearchDebouncer{
		client: c,
		minLen: search.MinPatternQueryLength,
		delay:  DebounceDelay,
		fetch: func(ctx context.Context, query string) (any, error) {
			return c.DecisionPatterns(ctx, query, limit)
		},
		onDone: onDone,
	}
}

// Query feeds the debouncer the latest text. Short queries cancel any pending
// request without firing.
func (d *SearchDebouncer) Query(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len([]rune(query)) < d.minLen {
		return
	}

	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		result, err := d.fetch(ctx, query)

		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		d.onDone(query, result, err)
	})
}

// Cancel drops any pending query.
func (d *SearchDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
