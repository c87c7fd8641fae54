package graphmodel

import (
	"strings"

	"github.com/msalah0e/tripgraph/internal/api"
)

// Build converts a /api/graph/byIds payload into a Model.
//
// An empty nodeIDs list yields an empty model whatever the payload; callers
// must not fetch for an empty selection. Duplicate node IDs keep the position
// of their first occurrence and the data of their last. Edges with an
// endpoint outside the node set are dropped.
func Build(nodeIDs []string, payload *api.GraphResponse) *Model {
	m := Empty()
	if len(nodeIDs) == 0 || payload == nil {
		return m
	}

	for _, n := range payload.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			continue
		}
		label := n.Label
		if label == "" {
			label = id
		}
		m.upsert(Node{ID: id, Label: label, Group: n.Group, Tooltip: n.Title})
	}

	for _, e := range payload.Edges {
		m.addEdge(Edge{
			From:     strings.TrimSpace(e.From),
			To:       strings.TrimSpace(e.To),
			Label:    e.Label,
			Directed: e.Arrows == "" || strings.Contains(e.Arrows, "to"),
		})
	}
	return m
}

// FromFacts builds a preview model from chat facts: each fact contributes its
// source and target nodes and one directed edge.
func FromFacts(facts []api.Fact) *Model {
	m := Empty()
	for _, f := range facts {
		if f.Source == "" || f.TargetID == "" {
			continue
		}
		if _, ok := m.Nodes[f.Source]; !ok {
			m.upsert(Node{ID: f.Source, Label: f.Source})
		}
		label := f.TargetName
		if label == "" {
			label = f.TargetID
		}
		m.upsert(Node{ID: f.TargetID, Label: label, Group: factGroup(f.Labels), Tooltip: f.TargetDesc})
		m.addEdge(Edge{From: f.Source, To: f.TargetID, Label: f.Rel, Directed: true})
	}
	return m
}

// factGroup picks the most specific Neo4j label; "Entity" is shared by all nodes.
func factGroup(labels []string) string {
	for _, l := range labels {
		if l != "" && l != "Entity" {
			return l
		}
	}
	return ""
}
