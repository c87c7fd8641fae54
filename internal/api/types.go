package api

import "encoding/json"

// Match is a retrieval hit relating a query to an entity.
type Match struct {
	ID       string        `json:"id" validate:"required"`
	Score    float64       `json:"score"`
	Metadata MatchMetadata `json:"metadata"`
}

// UnmarshalJSON clamps Score into [0, 1]. Cosine scores can land a rounding
// error outside it.
func (m *Match) UnmarshalJSON(data []byte) error {
	type match Match
	var v match
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	v.Score = min(max(v.Score, 0), 1)
	*m = Match(v)
	return nil
}

// MatchMetadata is the descriptive payload the retriever stores with an entity.
type MatchMetadata struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	City        string `json:"city,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisplayName returns the entity name, falling back to its ID.
func (m Match) DisplayName() string {
	if m.Metadata.Name != "" {
		return m.Metadata.Name
	}
	return m.ID
}

func (m Match) EntityType() string { return m.Metadata.Type }

func (m Match) Locality() string { return m.Metadata.City }

// Fact is one graph edge with denormalized target metadata.
type Fact struct {
	Source     string   `json:"source" validate:"required"`
	Rel        string   `json:"rel"`
	TargetID   string   `json:"target_id" validate:"required"`
	TargetName string   `json:"target_name"`
	TargetDesc string   `json:"target_desc,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Answer     string  `json:"answer"`
	Matches    []Match `json:"matches" validate:"dive"`
	GraphFacts []Fact  `json:"graph_facts" validate:"dive"`
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type SearchResponse struct {
	Matches []Match `json:"matches" validate:"dive"`
}

// GraphNode is a node descriptor as served by /api/graph/byIds.
type GraphNode struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	Title string `json:"title,omitempty"`
}

// GraphEdge is an edge descriptor as served by /api/graph/byIds.
// Arrows is "to" for directed edges.
type GraphEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label,omitempty"`
	Arrows string `json:"arrows,omitempty"`
}

type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"dive"`
	Edges []GraphEdge `json:"edges"`
}

type HealthResponse struct {
	Status  string `json:"status" validate:"required"`
	Message string `json:"message"`
}
