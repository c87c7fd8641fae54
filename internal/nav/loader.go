package nav

import (
	"context"
	"sync"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/request"
	"github.com/msalah0e/tripgraph/internal/selection"
	"go.uber.org/zap"
)

const defaultCacheSize = 64

// Fetcher loads graph payloads. *api.Client implements it.
type Fetcher interface {
	GraphByIDs(ctx context.Context, ids []string) (*api.GraphResponse, error)
}

// Key is the cache and dedup key of an ID list. Lists naming the same IDs in
// the same first-seen order share a key.
func Key(ids []string) string { return selection.New(ids...).Serialize() }

// normalize trims ids and drops blanks and repeats, keeping first-seen order.
func normalize(ids []string) []string { return selection.New(ids...).IDs() }

// Loader tracks the graph for the ID list currently shown. It issues at most
// one fetch per distinct list and drops results for lists no longer current.
type Loader struct {
	mu      sync.Mutex
	fetcher Fetcher
	logger  *zap.Logger
	key     string
	ids     []string
	state   request.State[*graphmodel.Model]
	cache   map[string]*graphmodel.Model
	order   []string
	limit   int
}

type LoaderOption func(*Loader)

func WithLoaderLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithCacheSize bounds the number of cached models; the oldest is evicted.
func WithCacheSize(n int) LoaderOption {
	return func(ld *Loader) {
		if n > 0 {
			ld.limit = n
		}
	}
}

func NewLoader(f Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: f,
		logger:  zap.NewNop(),
		cache:   make(map[string]*graphmodel.Model),
		limit:   defaultCacheSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Job is one pending graph fetch.
type Job struct {
	key     string
	ids     []string
	fetcher Fetcher
}

func (j *Job) Key() string   { return j.key }
func (j *Job) IDs() []string { return append([]string(nil), j.ids...) }

// Run fetches and adapts the graph. It may run off the event loop; the Result
// goes back through Loader.Apply.
func (j *Job) Run(ctx context.Context) Result {
	resp, err := j.fetcher.GraphByIDs(ctx, j.ids)
	if err != nil {
		return Result{Key: j.key, Err: err}
	}
	return Result{Key: j.key, Model: graphmodel.Build(j.ids, resp)}
}

type Result struct {
	Key   string
	Model *graphmodel.Model
	Err   error
}

// Open makes ids the current list. It returns a Job only when a fetch is
// needed: never for an empty list, the unchanged current list or a list with
// a cached model.
func (l *Loader) Open(ids []string) (*Job, bool) {
	ids = normalize(ids)
	key := Key(ids)

	l.mu.Lock()
	defer l.mu.Unlock()

	if key == "" {
		l.key, l.ids = "", nil
		l.state = request.State[*graphmodel.Model]{}
		return nil, false
	}
	if key == l.key {
		return nil, false
	}
	l.key = key
	l.ids = append([]string(nil), ids...)
	if m, ok := l.cache[key]; ok {
		l.state = request.Succeed(m)
		l.logger.Debug("graph served from cache", zap.String("key", key))
		return nil, false
	}
	l.state = request.Start[*graphmodel.Model]()
	l.logger.Debug("graph fetch started", zap.String("key", key))
	return &Job{key: key, ids: l.ids, fetcher: l.fetcher}, true
}

// Retry re-issues the fetch for the current list after a failure.
func (l *Loader) Retry() (*Job, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.key == "" || !l.state.IsFailure() {
		return nil, false
	}
	l.state = request.Start[*graphmodel.Model]()
	return &Job{key: l.key, ids: l.ids, fetcher: l.fetcher}, true
}

// Apply records r if it belongs to the current pending list.
func (l *Loader) Apply(r Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.Key != l.key || !l.state.IsPending() {
		l.logger.Debug("stale graph result dropped", zap.String("key", r.Key))
		return false
	}
	if r.Err != nil {
		l.state = request.Fail[*graphmodel.Model](r.Err)
		l.logger.Warn("graph fetch failed", zap.String("key", r.Key), zap.Error(r.Err))
		return true
	}
	l.store(r.Key, r.Model)
	l.state = request.Succeed(r.Model)
	return true
}

// Fetch returns the model for ids from the cache or the backend without
// touching the current list. Concurrent callers may fetch the same key once
// each; the first stored model wins.
func (l *Loader) Fetch(ctx context.Context, ids []string) (*graphmodel.Model, error) {
	ids = normalize(ids)
	key := Key(ids)
	if key == "" {
		return graphmodel.Empty(), nil
	}
	l.mu.Lock()
	m, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return m, nil
	}

	r := (&Job{key: key, ids: ids, fetcher: l.fetcher}).Run(ctx)
	if r.Err != nil {
		return nil, r.Err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.cache[key]; ok {
		return m, nil
	}
	l.store(key, r.Model)
	return r.Model, nil
}

func (l *Loader) store(key string, m *graphmodel.Model) {
	if _, ok := l.cache[key]; !ok {
		l.order = append(l.order, key)
	}
	l.cache[key] = m
	for len(l.order) > l.limit {
		delete(l.cache, l.order[0])
		l.order = l.order[1:]
	}
}

func (l *Loader) State() request.State[*graphmodel.Model] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Current returns the current list.
func (l *Loader) Current() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}
