// Package api is the HTTP client for the travel retrieval backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
	DefaultTopK    = 5
)

var validate = validator.New()

// BreakerSettings configures the circuit breaker wrapped around every call.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings returns the breaker configuration used when none is given.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Client talks to the backend over JSON/HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	metrics  *Metrics
	logger   *zap.Logger
	settings BreakerSettings
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) { c.settings = s }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   zap.NewNop(),
		settings: DefaultBreakerSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.settings, c.logger)
	return c
}

func newBreaker(s BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "travel-api",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Only transport-level failures count against the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) != NetworkFailure || errors.Is(err, context.Canceled)
		},
	})
}

// BaseURL returns the backend root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends one chat turn.
func (c *Client) Chat(ctx context.Context, query string) (*ChatResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &Error{Kind: EmptyInput, Op: "chat", Err: ErrEmptyInput}
	}
	var out ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/api/chat", nil, ChatRequest{Query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a plain vector search. topK <= 0 lets the backend pick its default.
func (c *Client) Search(ctx context.Context, query string, topK int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &Error{Kind: EmptyInput, Op: "search", Err: ErrEmptyInput}
	}
	var out SearchResponse
	if err := c.do(ctx, "search", http.MethodPost, "/api/search", nil, SearchRequest{Query: query, TopK: topK}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GraphByIDs fetches the subgraph spanning ids. Blank IDs are dropped; a list
// with nothing left is rejected without sending a request.
func (c *Client) GraphByIDs(ctx context.Context, ids []string) (*GraphResponse, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return nil, &Error{Kind: EmptyInput, Op: "graph", Err: ErrEmptyInput}
	}
	q := url.Values{"ids": {strings.Join(clean, ",")}}
	var out GraphResponse
	if err := c.do(ctx, "graph", http.MethodGet, "/api/graph/byIds", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	start := time.Now()

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, op, method, path, query, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &Error{Kind: NetworkFailure, Op: op, Err: err}
	}

	elapsed := time.Since(start)
	c.metrics.observe(op, err, elapsed)

	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return err
	}
	c.logger.Debug("api request",
		zap.String("op", op),
		zap.String("path", path),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: NetworkFailure, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Kind: NetworkFailure, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: NetworkFailure, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: NetworkFailure, Op: op, Status: resp.StatusCode, Err: errors.New(errorDetail(resp.Body, resp.Status))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: DecodeFailure, Op: op, Err: err}
	}
	if err := validate.Struct(out); err != nil {
		return &Error{Kind: DecodeFailure, Op: op, Err: err}
	}
	return nil
}

// errorDetail extracts FastAPI's {"detail": "..."} message when present.
func errorDetail(r io.Reader, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}
