// Package graphmodel turns backend graph payloads into render-ready graph models.
package graphmodel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node is a render node.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Group   string `json:"group,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Edge is a render edge. Both endpoints are keys of the owning Model's Nodes.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Label    string `json:"label,omitempty"`
	Directed bool   `json:"directed"`
}

// Model is a derived, read-only graph. Builders return a new *Model for every
// input; renderers key their lifecycle on the pointer.
type Model struct {
	Nodes map[string]Node
	Order []string // node IDs in first-seen input order
	Edges []Edge
}

// Empty returns a model with no nodes or edges.
func Empty() *Model {
	return &Model{Nodes: map[string]Node{}, Edges: []Edge{}}
}

func (m *Model) IsEmpty() bool { return m == nil || len(m.Nodes) == 0 }

// NodeList returns the nodes in Order.
func (m *Model) NodeList() []Node {
	out := make([]Node, 0, len(m.Order))
	for _, id := range m.Order {
		out = append(out, m.Nodes[id])
	}
	return out
}

// Groups returns the distinct non-empty node groups in first-seen order.
func (m *Model) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, n := range m.NodeList() {
		if n.Group != "" && !seen[n.Group] {
			seen[n.Group] = true
			groups = append(groups, n.Group)
		}
	}
	return groups
}

func (m *Model) upsert(n Node) {
	if _, exists := m.Nodes[n.ID]; !exists {
		m.Order = append(m.Order, n.ID)
	}
	m.Nodes[n.ID] = n
}

func (m *Model) addEdge(e Edge) bool {
	if _, ok := m.Nodes[e.From]; !ok {
		return false
	}
	if _, ok := m.Nodes[e.To]; !ok {
		return false
	}
	m.Edges = append(m.Edges, e)
	return true
}

// MarshalJSON encodes nodes as an ordered list.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}{Nodes: m.NodeList(), Edges: m.Edges})
}

// ExportDOT returns the model in Graphviz DOT format.
func (m *Model) ExportDOT() string {
	var b strings.Builder
	b.WriteString("digraph tripgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=ellipse, style=filled, fillcolor=\"#e8f4ee\"];\n\n")

	for _, n := range m.NodeList() {
		label := n.Label
		if n.Group != "" {
			label += "\\n(" + n.Group + ")"
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q];\n", n.ID, label))
	}

	b.WriteString("\n")
	for _, e := range m.Edges {
		attrs := fmt.Sprintf("label=%q", e.Label)
		if !e.Directed {
			attrs += ", dir=none"
		}
		b.WriteString(fmt.Sprintf("  %q -> %q [%s];\n", e.From, e.To, attrs))
	}

	b.WriteString("}\n")
	return b.String()
}
