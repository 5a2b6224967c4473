package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// Fetch outcomes reported to metrics.
const (
	FetchApplied = "applied"
	FetchStale   = "stale"
	FetchError   = "error"
)

// QueryState is a point-in-time copy of a controller.
type QueryState[T any] struct {
	Kind       domain.ResourceKind
	Query      domain.ResourceQuery
	Page       *domain.ResourcePage[T]
	Err        error
	Loading    bool
	Generation uint64
}

// QueryView is the kind-erased form of QueryState used by transports.
type QueryView struct {
	Kind       domain.ResourceKind  `json:"kind"`
	Query      domain.ResourceQuery `json:"-"`
	Items      any                  `json:"items"`
	TotalPages int                  `json:"total_pages"`
	HasPage    bool                 `json:"has_page"`
	Error      string               `json:"error,omitempty"`
	ErrorKind  domain.ErrorKind     `json:"error_kind,omitempty"`
	Loading    bool                 `json:"loading"`
	Generation uint64               `json:"generation"`
}

// QueryController is implemented by every ResourceQueryController regardless of item type.
type QueryController interface {
	Kind() domain.ResourceKind
	SetFilter(ctx context.Context, field, value string) (uint64, error)
	SetPage(ctx context.Context, page int) uint64
	Refetch(ctx context.Context) uint64
	Await(ctx context.Context, generation uint64) error
	PatchItem(itemID string, patch map[string]any) (bool, error)
	View() QueryView
	Reset()
}

// ResourceQueryController owns the filter, search and pagination state of one resource
// collection. Every state change issues a fetch tagged with a new generation; only the
// response for the latest generation may replace the visible page.
type ResourceQueryController[T domain.Identifiable] struct {
	mu         sync.Mutex
	kind       domain.ResourceKind
	query      domain.ResourceQuery
	page       *domain.ResourcePage[T]
	err        error
	generation uint64
	settled    uint64
	inflight   int
	changed    chan struct{}
	pageSize   int

	lister  port.ResourceLister[T]
	metrics port.ConsoleMetrics
	logger  *zap.Logger
}

// NewResourceQueryController creates a controller on page 1 with no page loaded.
func NewResourceQueryController[T domain.Identifiable](kind domain.ResourceKind, lister port.ResourceLister[T], pageSize int, logger *zap.Logger) *ResourceQueryController[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceQueryController[T]{
		kind:    kind,
		query:    domain.NewResourceQuery(pageSize),
		changed:  make(chan struct{}),
		pageSize: pageSize,
		lister:  lister,
		metrics: port.NopMetrics{},
		logger:  logger.With(zap.String("resource", string(kind))),
	}
}

// WithMetrics injects telemetry hooks.
func (c *ResourceQueryController[T]) WithMetrics(metrics port.ConsoleMetrics) *ResourceQueryController[T] {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

func (c *ResourceQueryController[T]) Kind() domain.ResourceKind {
	return c.kind
}

// SetFilter updates one filter field, resets the page to 1 and fetches.
// Invalid fields are rejected without a fetch.
func (c *ResourceQueryController[T]) SetFilter(ctx context.Context, field, value string) (uint64, error) {
	c.mu.Lock()
	next, err := c.query.WithFilter(field, value)
	if err != nil {
		c.mu.Unlock()
		return 0, err
	}
	c.query = next
	gen, snapshot := c.issueLocked()
	c.mu.Unlock()

	c.fetch(ctx, gen, snapshot)
	return gen, nil
}

// SetSearch sets the free-text search.
func (c *ResourceQueryController[T]) SetSearch(ctx context.Context, text string) (uint64, error) {
	return c.SetFilter(ctx, domain.FilterSearch, text)
}

// SetStatus sets the status filter. "all" clears it.
func (c *ResourceQueryController[T]) SetStatus(ctx context.Context, status string) (uint64, error) {
	return c.SetFilter(ctx, domain.FilterStatus, status)
}

// SetPageSize changes the page size. It counts as a filter change.
func (c *ResourceQueryController[T]) SetPageSize(ctx context.Context, size int) (uint64, error) {
	return c.SetFilter(ctx, domain.FilterPageSize, fmt.Sprint(size))
}

// SetPage moves to page n, clamped to the page count of the last loaded page.
func (c *ResourceQueryController[T]) SetPage(ctx context.Context, n int) uint64 {
	c.mu.Lock()
	upper := 1
	if c.page != nil && c.page.TotalPages > 1 {
		upper = c.page.TotalPages
	}
	if n > upper {
		n = upper
	}
	c.query = c.query.WithPage(n)
	gen, snapshot := c.issueLocked()
	c.mu.Unlock()

	c.fetch(ctx, gen, snapshot)
	return gen
}

// Refetch re-issues the current query unchanged.
func (c *ResourceQueryController[T]) Refetch(ctx context.Context) uint64 {
	c.mu.Lock()
	gen, snapshot := c.issueLocked()
	c.mu.Unlock()

	c.fetch(ctx, gen, snapshot)
	return gen
}

// Reset drops the loaded page, the error and every filter without fetching. Fetches still
// in flight settle as stale.
func (c *ResourceQueryController[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.settled = c.generation
	c.query = domain.NewResourceQuery(c.pageSize)
	c.page = nil
	c.err = nil
	c.broadcastLocked()
}

// Await blocks until the given generation, or a later one, has settled.
func (c *ResourceQueryController[T]) Await(ctx context.Context, generation uint64) error {
	for {
		c.mu.Lock()
		if c.settled >= generation {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("await %s generation %d: %w", c.kind, generation, ctx.Err())
		}
	}
}

// Idle blocks until no fetch is in flight, including responses that will be discarded.
func (c *ResourceQueryController[T]) Idle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.inflight == 0 {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("await %s idle: %w", c.kind, ctx.Err())
		}
	}
}

// ApplyOptimisticPatch replaces the matching item of the current page with patch(item).
// Sibling items and the page count are untouched. Returns false when the item is not on
// the current page. The next fetch overwrites any divergence.
func (c *ResourceQueryController[T]) ApplyOptimisticPatch(itemID string, patch func(T) T) bool {
	if patch == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return false
	}
	for i, item := range c.page.Items {
		if item.ResourceID() != itemID {
			continue
		}
		items := make([]T, len(c.page.Items))
		copy(items, c.page.Items)
		items[i] = patch(item)
		c.page = &domain.ResourcePage[T]{Items: items, TotalPages: c.page.TotalPages, Query: c.page.Query}
		return true
	}
	return false
}

// PatchItem merges a field patch into the matching item of the current page.
func (c *ResourceQueryController[T]) PatchItem(itemID string, patch map[string]any) (bool, error) {
	var mergeErr error
	applied := c.ApplyOptimisticPatch(itemID, func(item T) T {
		merged, err := MergePatch(item, patch)
		if err != nil {
			mergeErr = err
			return item
		}
		return merged
	})
	if mergeErr != nil {
		return false, mergeErr
	}
	return applied, nil
}

// State returns a copy of the controller state.
func (c *ResourceQueryController[T]) State() QueryState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := QueryState[T]{
		Kind:       c.kind,
		Query:      c.query.Clone(),
		Err:        c.err,
		Loading:    c.settled < c.generation,
		Generation: c.generation,
	}
	if c.page != nil {
		items := make([]T, len(c.page.Items))
		copy(items, c.page.Items)
		state.Page = &domain.ResourcePage[T]{Items: items, TotalPages: c.page.TotalPages, Query: c.page.Query.Clone()}
	}
	return state
}

// View returns the kind-erased state.
func (c *ResourceQueryController[T]) View() QueryView {
	state := c.State()
	view := QueryView{
		Kind:       state.Kind,
		Query:      state.Query,
		Items:      []T{},
		Loading:    state.Loading,
		Generation: state.Generation,
	}
	if state.Page != nil {
		view.Items = state.Page.Items
		view.TotalPages = state.Page.TotalPages
		view.HasPage = true
	}
	if state.Err != nil {
		view.Error = userMessage(state.Err, "Failed to load "+string(state.Kind))
		view.ErrorKind = domain.KindOf(state.Err)
	}
	return view
}

func (c *ResourceQueryController[T]) issueLocked() (uint64, domain.ResourceQuery) {
	c.generation++
	c.inflight++
	return c.generation, c.query.Clone()
}

// fetch runs the list call in the background. The fetch outlives the caller's context
// cancellation; stale results are dropped by generation instead.
func (c *ResourceQueryController[T]) fetch(ctx context.Context, gen uint64, query domain.ResourceQuery) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		items, totalPages, err := c.lister.ListResources(ctx, c.kind, query)
		c.settle(gen, query, items, totalPages, err)
	}()
}

func (c *ResourceQueryController[T]) settle(gen uint64, query domain.ResourceQuery, items []T, totalPages int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	defer c.broadcastLocked()

	if gen != c.generation {
		c.metrics.ObserveFetch(string(c.kind), FetchStale)
		c.logger.Debug("discarded stale page", zap.Uint64("generation", gen), zap.Uint64("latest", c.generation))
		return
	}
	c.settled = gen

	if err != nil {
		c.err = err
		c.metrics.ObserveFetch(string(c.kind), FetchError)
		c.logger.Warn("resource fetch failed",
			zap.Uint64("generation", gen),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return
	}

	if items == nil {
		items = []T{}
	}
	if totalPages < 0 {
		totalPages = 0
	}
	c.page = &domain.ResourcePage[T]{Items: items, TotalPages: totalPages, Query: query}
	c.err = nil
	c.metrics.ObserveFetch(string(c.kind), FetchApplied)
}

func (c *ResourceQueryController[T]) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// MergePatch overlays patch onto the JSON representation of item.
func MergePatch[T any](item T, patch map[string]any) (T, error) {
	if len(patch) == 0 {
		return item, nil
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return item, fmt.Errorf("merge patch: encode item: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return item, fmt.Errorf("merge patch: decode item: %w", err)
	}
	for key, value := range patch {
		fields[key] = value
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return item, fmt.Errorf("merge patch: encode fields: %w", err)
	}
	var merged T
	if err := json.Unmarshal(raw, &merged); err != nil {
		return item, fmt.Errorf("merge patch: %w", err)
	}
	return merged, nil
}
