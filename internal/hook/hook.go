// Package hook keeps the list state of one resource in sync with the API:
// current page, search and filters, the loaded rows and the last error.
package hook

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/internal/client"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultPageSize = 10
)

// Source is the subset of client.Resource the hook drives.
type Source[E any] interface {
	List(ctx context.Context, p client.ListParams) (*client.Page[E], error)
	Create(ctx context.Context, in *E) (*E, error)
	Update(ctx context.Context, id int64, in *E) (*E, error)
	Delete(ctx context.Context, id int64) (*client.DeleteResult, error)
}

// Status of the list fetch.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot handed to callers and subscribers.
type State[E any] struct {
	Status     Status
	Items      []E
	Err        string
	Pagination client.Pagination
	Params     client.ListParams
}

// Loading reports whether a fetch is in flight.
func (s State[E]) Loading() bool { return s.Status == Loading }

// Option configures a Resource.
type Option func(*settings)

type settings struct {
	debounce time.Duration
	params   client.ListParams
	logger   *zap.Logger
}

// WithDebounce sets the search debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) { s.debounce = d }
}

// WithParams sets the initial query.
func WithParams(p client.ListParams) Option {
	return func(s *settings) { s.params = p.Clone() }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Resource is safe for concurrent use. Setters fetch in the background;
// Refetch fetches synchronously.
type Resource[E any] struct {
	src      Source[E]
	debounce time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	params  client.ListParams
	state   State[E]
	gen     uint64
	timer   *time.Timer
	subs    map[int]func(State[E])
	nextSub int
	closed  bool
}

// New creates an idle hook over src. Nothing is fetched until a setter or
// Refetch is called.
func New[E any](src Source[E], opts ...Option) *Resource[E] {
	s := settings{debounce: DefaultDebounce, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.params.Page <= 0 {
		s.params.Page = 1
	}
	if s.params.PageSize <= 0 {
		s.params.PageSize = DefaultPageSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Resource[E]{
		src:      src,
		debounce: s.debounce,
		logger:   s.logger,
		ctx:      ctx,
		cancel:   cancel,
		params:   s.params,
		state:    State[E]{Status: Idle, Params: s.params.Clone()},
		subs:     make(map[int]func(State[E])),
	}
}

// State returns the current snapshot.
func (r *Resource[E]) State() State[E] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Params returns the current query.
func (r *Resource[E]) Params() client.ListParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params.Clone()
}

// Subscribe registers fn for every state transition and returns a func that
// removes it. fn runs on the goroutine that produced the transition.
func (r *Resource[E]) Subscribe(fn func(State[E])) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// ── query changes ──

// SetPage moves to page n and fetches.
func (r *Resource[E]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	r.change(func(p *client.ListParams) { p.Page = n })
}

// SetPageSize changes the page size, goes back to page 1 and fetches.
func (r *Resource[E]) SetPageSize(n int) {
	if n < 1 {
		n = DefaultPageSize
	}
	r.change(func(p *client.ListParams) {
		p.PageSize = n
		p.Page = 1
	})
}

// SetStatus filters by status ("" for all), goes back to page 1 and fetches.
func (r *Resource[E]) SetStatus(status string) {
	r.change(func(p *client.ListParams) {
		p.Status = status
		p.Page = 1
	})
}

// SetFilter sets one extra filter ("" removes it), goes back to page 1 and fetches.
func (r *Resource[E]) SetFilter(key, value string) {
	r.change(func(p *client.ListParams) {
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		if value == "" {
			delete(p.Filters, key)
		} else {
			p.Filters[key] = value
		}
		p.Page = 1
	})
}

// SetSearch resets the page to 1 at once and fetches after the debounce
// delay. A newer call or Close cancels the pending fetch.
func (r *Resource[E]) SetSearch(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.params.Search = term
	r.params.Page = 1

	if r.timer != nil {
		r.timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		if r.closed || r.timer != timer {
			r.mu.Unlock()
			return
		}
		r.timer = nil
		gen, params := r.beginLocked()
		snap := r.snapshotLocked()
		subs := r.subscribersLocked()
		r.wg.Add(1)
		r.mu.Unlock()

		defer r.wg.Done()
		notify(subs, snap)
		r.run(r.ctx, gen, params)
	})
	r.timer = timer
}

// change applies fn to the query and starts a background fetch. A pending
// debounced search is folded into this fetch.
func (r *Resource[E]) change(fn func(*client.ListParams)) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	fn(&r.params)
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	gen, params := r.beginLocked()
	snap := r.snapshotLocked()
	subs := r.subscribersLocked()
	r.wg.Add(1)
	r.mu.Unlock()

	notify(subs, snap)
	go func() {
		defer r.wg.Done()
		r.run(r.ctx, gen, params)
	}()
}

// Refetch re-issues the current query and waits for it. The returned state
// may belong to a newer request if one was issued meanwhile.
func (r *Resource[E]) Refetch(ctx context.Context) State[E] {
	r.mu.Lock()
	if r.closed {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap
	}
	gen, params := r.beginLocked()
	snap := r.snapshotLocked()
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, snap)

	ctx, stop := mergeCancel(ctx, r.ctx)
	defer stop()
	return r.run(ctx, gen, params)
}

// ── fetch ──

func (r *Resource[E]) beginLocked() (uint64, client.ListParams) {
	r.gen++
	params := r.params.Clone()
	r.state.Status = Loading
	r.state.Err = ""
	r.state.Params = params
	return r.gen, params
}

// run performs the fetch for generation gen; stale results are dropped.
func (r *Resource[E]) run(ctx context.Context, gen uint64, params client.ListParams) State[E] {
	page, err := r.src.List(ctx, params)

	r.mu.Lock()
	if r.closed || gen != r.gen {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.logger.Debug("discarding stale list response", zap.Uint64("generation", gen))
		return snap
	}

	if err != nil {
		r.state.Status = Errored
		r.state.Err = client.Message(err)
		r.logger.Warn("list fetch failed", zap.Int("page", params.Page), zap.Error(err))
	} else {
		r.state.Status = Loaded
		r.state.Items = page.Items
		r.state.Pagination = page.Pagination
	}
	snap := r.snapshotLocked()
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, snap)
	return snap
}

// ── mutations ──

// Create delegates to the source. The list is not patched; call Refetch.
func (r *Resource[E]) Create(ctx context.Context, in *E) (*E, error) {
	out, err := r.src.Create(ctx, in)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	return out, nil
}

// Update delegates to the source.
func (r *Resource[E]) Update(ctx context.Context, id int64, in *E) (*E, error) {
	out, err := r.src.Update(ctx, id, in)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	return out, nil
}

// Delete delegates to the source.
func (r *Resource[E]) Delete(ctx context.Context, id int64) (*client.DeleteResult, error) {
	out, err := r.src.Delete(ctx, id)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	return out, nil
}

func (r *Resource[E]) fail(err error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.state.Err = client.Message(err)
	snap := r.snapshotLocked()
	subs := r.subscribersLocked()
	r.mu.Unlock()

	notify(subs, snap)
}

// Close stops the pending search timer, cancels in-flight fetches and drops
// subscribers. Further calls are no-ops.
func (r *Resource[E]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.subs = map[int]func(State[E]){}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// ── helpers ──

func (r *Resource[E]) snapshotLocked() State[E] {
	s := r.state
	s.Params = r.state.Params.Clone()
	if r.state.Items != nil {
		s.Items = append([]E(nil), r.state.Items...)
	}
	return s
}

func (r *Resource[E]) subscribersLocked() []func(State[E]) {
	out := make([]func(State[E]), 0, len(r.subs))
	for _, fn := range r.subs {
		out = append(out, fn)
	}
	return out
}

func notify[E any](subs []func(State[E]), s State[E]) {
	for _, fn := range subs {
		fn(s)
	}
}

// mergeCancel returns a context cancelled when either parent is.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
