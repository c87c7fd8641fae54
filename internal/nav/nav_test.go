package nav

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphURL(t *testing.T) {
	tests := []struct {
		name string
		set  *selection.Set
		want string
	}{
		{"two ids", selection.New("hoi_an", "quang_nam"), "/graph?ids=hoi_an,quang_nam"},
		{"empty", selection.New(), "/graph?ids="},
		{"escaped", selection.New("ba na hills", "a,b", "x&y"), "/graph?ids=ba+na+hills,a%2Cb,x%26y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GraphURL(tt.set))
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	set := selection.New("hoi_an", "ba na hills", "a,b", "x&y", "100%")
	ids, err := DecodeIDs(GraphURL(set))
	require.NoError(t, err)
	assert.Equal(t, set.IDs(), ids)
	assert.True(t, IsGraphURL(GraphURL(set)))
	assert.False(t, IsGraphURL(ChatPath))
}

func TestDecodeIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"/graph?ids=a,b", []string{"a", "b"}},
		{"/graph?ids= a , ,b,", []string{"a", "b"}},
		{"/graph?ids=a,a", []string{"a", "a"}},
		{"/graph?ids=", nil},
		{"/graph", nil},
		{"/graph?other=1&ids=x", []string{"x"}},
	}
	for _, tt := range tests {
		got, err := DecodeIDs(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestIDsFromQueryMirrorsParseIDs(t *testing.T) {
	for _, text := range []string{"a,b", " a , ,b,", "", "a,a"} {
		assert.Equal(t, selection.ParseIDs(text), IDsFromQuery(url.Values{Param: {text}}), text)
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeFetcher) GraphByIDs(_ context.Context, ids []string) (*api.GraphResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	resp := &api.GraphResponse{}
	for _, id := range ids {
		resp.Nodes = append(resp.Nodes, api.GraphNode{ID: id, Label: id})
	}
	return resp, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestLoaderEmptyListIsDisabled(t *testing.T) {
	f := &fakeFetcher{}
	l := NewLoader(f)
	job, ok := l.Open(nil)
	assert.False(t, ok)
	assert.Nil(t, job)
	assert.True(t, l.State().IsIdle())
	assert.Zero(t, f.count())
}

func TestLoaderOneFetchPerKey(t *testing.T) {
	f := &fakeFetcher{}
	l := NewLoader(f)

	job, ok := l.Open([]string{"a", "b"})
	require.True(t, ok)
	assert.True(t, l.State().IsPending())

	_, ok = l.Open([]string{"a", "b"})
	assert.False(t, ok, "unchanged key")

	require.True(t, l.Apply(job.Run(context.Background())))
	first, ok := l.State().Value()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, first.Order)

	// away and back: served from cache with the identical model
	_, ok = l.Open([]string{"c"})
	require.True(t, ok)
	_, ok = l.Open([]string{"a", "b"})
	assert.False(t, ok)
	again, _ := l.State().Value()
	assert.Same(t, first, again)
	assert.Equal(t, 1, f.count())
}

func TestLoaderDuplicateIDsShareKey(t *testing.T) {
	assert.Equal(t, "a,b", Key([]string{"a", " b", "a", ""}))
	assert.Equal(t, Key([]string{"a"}), Key([]string{"a", "a"}))

	f := &fakeFetcher{}
	l := NewLoader(f)

	ids, err := DecodeIDs("/graph?ids=a,a")
	require.NoError(t, err)
	job, ok := l.Open(ids)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, job.IDs(), "duplicates are not sent")

	_, ok = l.Open([]string{"a"})
	assert.False(t, ok, "same set, same key")

	require.True(t, l.Apply(job.Run(context.Background())))
	assert.Equal(t, [][]string{{"a"}}, f.calls)

	_, err = l.Fetch(context.Background(), []string{"a", "a", "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(), "served from cache")
}

func TestLoaderDropsStaleResults(t *testing.T) {
	f := &fakeFetcher{}
	l := NewLoader(f)

	old, ok := l.Open([]string{"a"})
	require.True(t, ok)
	cur, ok := l.Open([]string{"b"})
	require.True(t, ok)

	assert.False(t, l.Apply(old.Run(context.Background())))
	assert.True(t, l.State().IsPending())

	require.True(t, l.Apply(cur.Run(context.Background())))
	m, _ := l.State().Value()
	assert.Equal(t, []string{"b"}, m.Order)
	assert.Equal(t, []string{"b"}, l.Current())
}

func TestLoaderFailureAndRetry(t *testing.T) {
	f := &fakeFetcher{err: &api.Error{Kind: api.NetworkFailure, Op: "graph", Err: errors.New("refused")}}
	l := NewLoader(f)

	_, ok := l.Retry()
	assert.False(t, ok)

	job, _ := l.Open([]string{"a"})
	require.True(t, l.Apply(job.Run(context.Background())))
	assert.True(t, l.State().IsFailure())
	assert.Equal(t, api.NetworkFailure, api.KindOf(l.State().Err()))

	f.err = nil
	job, ok = l.Retry()
	require.True(t, ok)
	require.True(t, l.Apply(job.Run(context.Background())))
	assert.True(t, l.State().IsSuccess())
}

func TestLoaderFetchUsesCache(t *testing.T) {
	f := &fakeFetcher{}
	l := NewLoader(f, WithCacheSize(1))

	m1, err := l.Fetch(context.Background(), []string{"a"})
	require.NoError(t, err)
	m2, err := l.Fetch(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, f.count())

	_, err = l.Fetch(context.Background(), []string{"b"})
	require.NoError(t, err)
	_, err = l.Fetch(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.count(), "a was evicted by b")

	empty, err := l.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 3, f.count())
}
