package paging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPageSize     = 20
	DefaultEmptyMessage = "No results found"
	DefaultErrorMessage = "Error fetching records"
	NoMoreDataMessage   = "No more additional data"
)

var ErrClosed = errors.New("fetcher closed")

// FetchFunc loads one page of a list endpoint.
type FetchFunc[T any] func(ctx context.Context, params shop.SearchParameters) (*shop.ListPage[T], error)

type Options[T any] struct {
	// PageSize is sent as limit and is the offset step. Defaults to DefaultPageSize.
	PageSize int
	// Scope carries the role filters (shopId / shopOwnerId) sent with every page.
	Scope shop.SearchParameters
	// EmptyMessage is shown when the list is empty and no search term is set.
	EmptyMessage string
	// ErrorMessage is shown when a fetch fails.
	ErrorMessage string
	// NoMoreData is called each time the end of a fully loaded list is reached.
	NoMoreData func(message string)
	// NotifyOnce limits NoMoreData to the first end-reached after each exhaustion.
	NotifyOnce bool
	// Key, when set, drops records whose key has already been loaded.
	Key func(T) string
	// OnChange is called after every state change.
	OnChange func()
}

// Fetcher accumulates pages of a list endpoint for one screen. Fetches run on
// the caller's goroutine; at most one is in flight at a time.
type Fetcher[T any] struct {
	fetch FetchFunc[T]
	opts  Options[T]

	mu         sync.Mutex
	records    []T
	seen       map[string]struct{}
	totalItems int
	offset     int
	loaded     bool
	searchTerm string
	message    string
	fetching   bool
	notified   bool
	stalled    bool
	closed     bool
	generation uint64
	cancel     context.CancelFunc
}

func NewFetcher[T any](fetch FetchFunc[T], opts Options[T]) *Fetcher[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = DefaultEmptyMessage
	}
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = DefaultErrorMessage
	}
	return &Fetcher[T]{fetch: fetch, opts: opts}
}

// Start loads the first page with the current search term.
func (f *Fetcher[T]) Start(ctx context.Context) error {
	return f.reset(ctx, nil)
}

// Search clears the loaded records and fetches the first page for term.
func (f *Fetcher[T]) Search(ctx context.Context, term string) error {
	return f.reset(ctx, &term)
}

// Refresh clears the loaded records and the search term and fetches the first page.
func (f *Fetcher[T]) Refresh(ctx context.Context) error {
	empty := ""
	return f.reset(ctx, &empty)
}

// SetSearchTerm records term for the next Start, Search or Refresh without fetching.
func (f *Fetcher[T]) SetSearchTerm(term string) {
	f.mu.Lock()
	f.searchTerm = term
	f.mu.Unlock()
}

// EndReached loads the next page when the list is not exhausted and nothing
// is in flight. On an exhausted list it raises the no-more-data notice instead.
// Once a page has added no records the fetcher is stalled and EndReached does
// nothing until the next reset.
func (f *Fetcher[T]) EndReached(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.fetching || !f.loaded || (f.stalled && !f.exhausted()) {
		f.mu.Unlock()
		return nil
	}
	if f.exhausted() {
		notify := f.opts.NoMoreData != nil && (!f.opts.NotifyOnce || !f.notified)
		f.notified = true
		f.mu.Unlock()
		if notify {
			f.opts.NoMoreData(NoMoreDataMessage)
		}
		return nil
	}
	return f.begin(ctx, f.offset+f.opts.PageSize)
}

// Close cancels any fetch in flight. Results arriving afterwards are dropped.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.fetching = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Records returns a copy of the records loaded so far.
func (f *Fetcher[T]) Records() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]T, len(f.records))
	copy(out, f.records)
	return out
}

func (f *Fetcher[T]) TotalItems() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalItems
}

// Message is the empty-list or error text to show in place of records, or "".
func (f *Fetcher[T]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Fetcher[T]) SearchTerm() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchTerm
}

func (f *Fetcher[T]) Fetching() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetching
}

// Exhausted reports whether every record the server has is loaded.
func (f *Fetcher[T]) Exhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded && f.exhausted()
}

// Stalled reports whether the last page added nothing although records are
// still missing, as happens with short pages or duplicates dropped by Key.
func (f *Fetcher[T]) Stalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded && f.stalled && !f.exhausted()
}

func (f *Fetcher[T]) exhausted() bool {
	return len(f.records) >= f.totalItems
}

// reset drops the loaded state and fetches offset 0. A fetch still in flight
// is cancelled and its result discarded.
func (f *Fetcher[T]) reset(ctx context.Context, term *string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
	f.records = nil
	f.seen = nil
	f.totalItems = 0
	f.offset = 0
	f.loaded = false
	f.message = ""
	f.notified = false
	f.stalled = false
	f.fetching = false
	if term != nil {
		f.searchTerm = *term
	}
	return f.begin(ctx, 0)
}

// begin must be called with f.mu held; it releases it.
func (f *Fetcher[T]) begin(ctx context.Context, offset int) error {
	if f.fetching {
		f.mu.Unlock()
		return nil
	}
	f.fetching = true
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	generation := f.generation

	params := f.opts.Scope
	params.Offset = offset
	params.Limit = f.opts.PageSize
	params.SearchTerm = strings.TrimSpace(f.searchTerm)
	f.mu.Unlock()
	f.changed()

	page, err := f.fetch(ctx, params)
	cancel()
	return f.finish(generation, offset, page, err)
}

func (f *Fetcher[T]) finish(generation uint64, offset int, page *shop.ListPage[T], err error) error {
	f.mu.Lock()
	if f.closed || generation != f.generation {
		f.mu.Unlock()
		log.Debug().Int("offset", offset).Msg("dropping stale page")
		return nil
	}
	f.fetching = false
	f.cancel = nil

	if err == nil && page == nil {
		err = errors.New("empty page")
	}
	if err != nil {
		f.message = f.opts.ErrorMessage
		f.mu.Unlock()
		log.Err(err).Int("offset", offset).Msg("fetching page")
		f.changed()
		return fmt.Errorf("[paging Fetch] offset %d: %w", offset, err)
	}

	before := len(f.records)
	f.append(page.Records)
	f.stalled = len(f.records) == before
	f.totalItems = page.TotalItems
	f.offset = offset
	f.loaded = true
	f.message = ""
	if page.TotalItems == 0 {
		f.message = f.opts.EmptyMessage
		if term := strings.TrimSpace(f.searchTerm); term != "" {
			f.message = fmt.Sprintf("No results found for %s", term)
		}
	}
	f.mu.Unlock()
	f.changed()
	return nil
}

func (f *Fetcher[T]) append(records []T) {
	if f.opts.Key == nil {
		f.records = append(f.records, records...)
		return
	}
	if f.seen == nil {
		f.seen = make(map[string]struct{}, len(records))
	}
	for _, r := range records {
		k := f.opts.Key(r)
		if _, dup := f.seen[k]; dup {
			continue
		}
		f.seen[k] = struct{}{}
		f.records = append(f.records, r)
	}
}

func (f *Fetcher[T]) changed() {
	if f.opts.OnChange != nil {
		f.opts.OnChange()
	}
}
