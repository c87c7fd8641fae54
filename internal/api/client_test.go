package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestChat(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Tell me about Hoi An", req.Query)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "Hoi An is an ancient town.",
			"matches": [{"id": "hoi_an", "score": 0.92, "metadata": {"name": "Hoi An", "type": "City", "city": "Hoi An"}}],
			"graph_facts": [{"source": "hoi_an", "rel": "Located_In", "target_id": "quang_nam", "target_name": "Quang Nam", "labels": ["Entity", "Region"]}]
		}`))
	})

	c := New(srv.URL)
	resp, err := c.Chat(context.Background(), "  Tell me about Hoi An ")
	require.NoError(t, err)
	assert.Equal(t, "Hoi An is an ancient town.", resp.Answer)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Hoi An", resp.Matches[0].DisplayName())
	assert.Equal(t, "City", resp.Matches[0].EntityType())
	require.Len(t, resp.GraphFacts, 1)
	assert.Equal(t, "quang_nam", resp.GraphFacts[0].TargetID)
	assert.Equal(t, []string{"Entity", "Region"}, resp.GraphFacts[0].Labels)
}

func TestChatClampsScores(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"answer": "Hoi An is lovely",
			"matches": [
				{"id": "hoi_an", "score": 1.0000001, "metadata": {"name": "Hoi An"}},
				{"id": "my_son", "score": -0.01},
				{"id": "hue", "score": 0.5}
			],
			"graph_facts": [{"source": "hoi_an", "rel": "Located_In", "target_id": "quang_nam"}]
		}`))
	})

	resp, err := New(srv.URL).Chat(context.Background(), "Hoi An")
	require.NoError(t, err)
	assert.Equal(t, "Hoi An is lovely", resp.Answer)
	require.Len(t, resp.Matches, 3)
	assert.Equal(t, 1.0, resp.Matches[0].Score)
	assert.Equal(t, "Hoi An", resp.Matches[0].DisplayName())
	assert.Equal(t, 0.0, resp.Matches[1].Score)
	assert.Equal(t, 0.5, resp.Matches[2].Score)
	assert.Len(t, resp.GraphFacts, 1)
}

func TestChatEmptyQueryNotSent(t *testing.T) {
	called := false
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := New(srv.URL).Chat(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, EmptyInput, KindOf(err))
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.False(t, called)
}

func TestGraphByIDs(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/graph/byIds", r.URL.Path)
		assert.Equal(t, "hoi_an,da_nang", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"nodes":[{"id":"hoi_an","label":"Hoi An"}],"edges":[{"from":"hoi_an","to":"da_nang","label":"Near","arrows":"to"}]}`))
	})

	resp, err := New(srv.URL).GraphByIDs(context.Background(), []string{" hoi_an", "", "da_nang "})
	require.NoError(t, err)
	assert.Len(t, resp.Nodes, 1)
	assert.Len(t, resp.Edges, 1)
}

func TestGraphByIDsEmptyNotSent(t *testing.T) {
	called := false
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := New(srv.URL).GraphByIDs(context.Background(), []string{" ", ""})
	assert.Equal(t, EmptyInput, KindOf(err))
	assert.False(t, called)
}

func TestSearchSendsTopK(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		w.Write([]byte(`{"matches":[{"id":"a","score":0.5,"metadata":{}}]}`))
	})

	resp, err := New(srv.URL).Search(context.Background(), "beaches", 3)
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "a", resp.Matches[0].DisplayName())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","message":"Service is healthy"}`))
	})

	resp, err := New(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"Error processing query: boom"}`, NetworkFailure, "Error processing query: boom"},
		{"bad json", http.StatusOK, `{"answer":`, DecodeFailure, ""},
		{"wrong shape", http.StatusOK, `{"answer": 42}`, DecodeFailure, ""},
		{"match without id", http.StatusOK, `{"answer":"x","matches":[{"score":0.5}]}`, DecodeFailure, ""},
		{"fact without target", http.StatusOK, `{"answer":"x","graph_facts":[{"source":"a"}]}`, DecodeFailure, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := New(srv.URL).Chat(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
				assert.Contains(t, UserMessage(err), tt.msg)
			}
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, NetworkFailure, KindOf(err))
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	c := New(srv.URL, WithBreaker(BreakerSettings{
		MaxRequests:      1,
		FailureThreshold: 1,
		MinRequests:      2,
		Timeout:          DefaultTimeout,
	}))
	for i := 0; i < 2; i++ {
		_, err := c.Health(context.Background())
		require.Error(t, err)
	}

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, NetworkFailure, KindOf(err))
	assert.Equal(t, 2, calls, "open breaker must not reach the server")
}

func TestMetricsObserved(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","message":"fine"}`))
	})

	m := NewMetrics("tripgraph")
	c := New(srv.URL, WithMetrics(m))
	_, err := c.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("health", "ok")))
}
