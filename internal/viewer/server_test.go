package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	calls atomic.Int32
	err   error
}

func (b *backend) GraphByIDs(_ context.Context, ids []string) (*api.GraphResponse, error) {
	b.calls.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	resp := &api.GraphResponse{}
	for _, id := range ids {
		resp.Nodes = append(resp.Nodes, api.GraphNode{ID: id, Label: strings.ReplaceAll(id, "_", " "), Group: "Place"})
	}
	if len(ids) > 1 {
		resp.Edges = append(resp.Edges, api.GraphEdge{From: ids[0], To: ids[1], Label: "Located_In", Arrows: "to"})
	}
	return resp, nil
}

func newTestServer(t *testing.T, b *backend) *httptest.Server {
	t.Helper()
	metrics := api.NewMetrics("tripgraph")
	s := New(Config{Width: 640, Height: 480, Render: render.DefaultOptions()}, nav.NewLoader(b), WithMetrics(metrics.Registry()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, &backend{})
	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<form action="/open"`)
}

func TestOpenRedirectsToGraphURL(t *testing.T) {
	ts := newTestServer(t, &backend{})
	resp, _ := get(t, ts.URL+"/open?ids=hoi_an%2C+quang_nam%2C+hoi_an")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/graph?ids=hoi_an,quang_nam", resp.Header.Get("Location"))
}

func TestGraphPage(t *testing.T) {
	b := &backend{}
	ts := newTestServer(t, b)

	resp, body := get(t, ts.URL+"/graph?ids=hoi_an,quang_nam")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Visualizing relationships for 2 selected nodes")
	assert.Contains(t, body, "hoi_an, quang_nam · 2 nodes · 1 edges")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `data-id="hoi_an"`)
	assert.Contains(t, body, `data-id="quang_nam"`)
	assert.Contains(t, body, "Place")

	get(t, ts.URL+"/graph?ids=hoi_an,quang_nam")
	assert.EqualValues(t, 1, b.calls.Load(), "second view is served from the cache")
}

func TestGraphPageEmptyState(t *testing.T) {
	b := &backend{}
	ts := newTestServer(t, b)

	for _, path := range []string{"/graph", "/graph?ids=", "/graph?ids=,%20,"} {
		resp, body := get(t, ts.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Visualizing relationships for 0 selected nodes", path)
		assert.Contains(t, body, render.PlaceholderTitle, path)
		assert.Contains(t, body, `<a href="/">Open a graph</a>`, path)
	}
	assert.Zero(t, b.calls.Load())
}

func TestGraphPageBackendFailure(t *testing.T) {
	b := &backend{err: &api.Error{Kind: api.NetworkFailure, Op: "graph", Err: errors.New("connection refused")}}
	ts := newTestServer(t, b)

	resp, body := get(t, ts.URL+"/graph?ids=hue")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Could not reach the travel service")
	assert.Contains(t, body, `<a href="/graph?ids=hue">Retry</a>`)
	assert.NotContains(t, body, "<svg")
}

func TestGraphSVG(t *testing.T) {
	ts := newTestServer(t, &backend{})
	resp, body := get(t, ts.URL+"/graph.svg?ids=hue,da_nang")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "<svg"))
	assert.Contains(t, body, `marker-end="url(#arrow)"`)
}

func TestGraphJSON(t *testing.T) {
	ts := newTestServer(t, &backend{})
	resp, body := get(t, ts.URL+"/graph.json?ids=hue,da_nang")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Nodes []struct{ ID string } `json:"nodes"`
		Edges []struct {
			From, To string
			Directed bool
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "hue", got.Nodes[0].ID)
	require.Len(t, got.Edges, 1)
	assert.True(t, got.Edges[0].Directed)

	b := &backend{err: &api.Error{Kind: api.DecodeFailure, Op: "graph", Err: errors.New("bad json")}}
	ts = newTestServer(t, b)
	resp, body = get(t, ts.URL+"/graph.json?ids=hue")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "unexpected response")
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, &backend{})

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, _ = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, nav.NewLoader(&backend{}))
	ctx, cancel := context.WithCancel(context.Background())

	addr := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, func(a string) { addr <- a }) }()

	resp, _ := get(t, "http://"+<-addr+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(&api.Error{Kind: api.NetworkFailure, Err: errors.New("x")}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&api.Error{Kind: api.EmptyInput, Err: errors.New("x")}))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
