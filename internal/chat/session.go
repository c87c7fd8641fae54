// Package chat implements the conversation state machine: message history plus
// the status of the single in-flight chat request.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/request"
	"go.uber.org/zap"
)

// ErrRejected is returned by Send when the text is blank or a request is pending.
var ErrRejected = errors.New("chat: submission rejected")

// Client is the backend call a Session issues per turn.
type Client interface {
	Chat(ctx context.Context, query string) (*api.ChatResponse, error)
}

// Session owns the conversation history and the request lifecycle.
// At most one turn is in flight; further submissions are rejected, not queued.
type Session struct {
	mu      sync.Mutex
	id      string
	client  Client
	logger  *zap.Logger
	now     func() time.Time
	history []Message
	state   request.State[*api.ChatResponse]
	lastID  uint64
	turnSeq uint64
	pending uint64
}

// Option configures a Session.
type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an idle session with an empty history.
func NewSession(client Client, opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	return s
}

// Turn is an accepted submission waiting to be run.
type Turn struct {
	seq    uint64
	text   string
	client Client
}

func (t *Turn) Text() string { return t.text }

// Run performs the outbound chat call. It may run off the event loop; its
// Outcome must be handed back to Session.Apply.
func (t *Turn) Run(ctx context.Context) Outcome {
	resp, err := t.client.Chat(ctx, t.text)
	if err == nil && resp == nil {
		err = &api.Error{Kind: api.DecodeFailure, Op: "chat", Err: errors.New("empty response")}
	}
	return Outcome{turn: t.seq, Text: t.text, Response: resp, Err: err}
}

// Outcome is the result of running a Turn.
type Outcome struct {
	turn     uint64
	Text     string
	Response *api.ChatResponse
	Err      error
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Submit accepts text for sending. It returns false, changing nothing, when
// text is blank or a turn is already pending. On acceptance the state becomes
// Pending and nothing is appended until the Outcome is applied.
func (s *Session) Submit(text string) (*Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsPending() {
		s.logger.Debug("submission rejected while pending")
		return nil, false
	}
	s.turnSeq++
	s.pending = s.turnSeq
	s.state = request.Start[*api.ChatResponse]()
	s.logger.Info("chat turn submitted", zap.Uint64("turn", s.turnSeq), zap.Int("chars", len(text)))
	return &Turn{seq: s.turnSeq, text: text, client: s.client}, true
}

// Apply records the outcome of the pending turn. Outcomes of any other turn
// are ignored and Apply reports false.
func (s *Session) Apply(o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsPending() || o.turn != s.pending {
		return false
	}
	s.pending = 0

	if o.Err != nil {
		s.state = request.Fail[*api.ChatResponse](o.Err)
		s.logger.Warn("chat turn failed", zap.Uint64("turn", o.turn), zap.Error(o.Err))
		return true
	}

	user := s.appendLocked(Message{Role: RoleUser, Content: o.Text})
	s.appendLocked(Message{
		Role:      RoleAssistant,
		Content:   o.Response.Answer,
		CreatedAt: user.CreatedAt,
		Matches:   o.Response.Matches,
		Facts:     o.Response.GraphFacts,
	})
	s.state = request.Succeed(o.Response)
	s.logger.Info("chat turn answered",
		zap.Uint64("turn", o.turn),
		zap.Int("matches", len(o.Response.Matches)),
		zap.Int("facts", len(o.Response.GraphFacts)),
	)
	return true
}

// Send submits text, runs the turn and applies its outcome.
func (s *Session) Send(ctx context.Context, text string) error {
	turn, ok := s.Submit(text)
	if !ok {
		return ErrRejected
	}
	o := turn.Run(ctx)
	s.Apply(o)
	return o.Err
}

// Reset empties the history. Message IDs keep increasing afterwards and a
// pending turn stays pending.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	if !s.state.IsPending() {
		s.state = request.State[*api.ChatResponse]{}
	}
	s.logger.Info("history cleared")
}

// appendLocked stamps m with the next ID and the current time, never earlier
// than m.CreatedAt, and appends it.
func (s *Session) appendLocked(m Message) Message {
	s.lastID++
	m.ID = s.lastID
	ts := s.now()
	if ts.Before(m.CreatedAt) {
		ts = m.CreatedAt
	}
	m.CreatedAt = ts
	s.history = append(s.history, m)
	return m
}

// State returns the current request state.
func (s *Session) State() request.State[*api.ChatResponse] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the messages in order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	for i, m := range s.history {
		out[i] = m.clone()
	}
	return out
}

// Latest returns the last message when it is an assistant message. The side
// panels read matches and facts from it alone; nothing accumulates across turns.
func (s *Session) Latest() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return Message{}, false
	}
	last := s.history[len(s.history)-1]
	if !last.IsAssistant() {
		return Message{}, false
	}
	return last.clone(), true
}
