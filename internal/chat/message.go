package chat

import (
	"time"

	"github.com/msalah0e/tripgraph/internal/api"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation. Messages are never modified after
// they are appended.
type Message struct {
	ID        uint64      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Matches   []api.Match `json:"matches,omitempty"`
	Facts     []api.Fact  `json:"graph_facts,omitempty"`
}

func (m Message) IsAssistant() bool { return m.Role == RoleAssistant }

func (m Message) clone() Message {
	if m.Matches != nil {
		m.Matches = append([]api.Match(nil), m.Matches...)
	}
	if m.Facts != nil {
		m.Facts = append([]api.Fact(nil), m.Facts...)
	}
	return m
}
