package tui

import (
	"fmt"
	"strings"

	"github.com/msalah0e/tripgraph/internal/api"
)

const descRunes = 90

// matchLines formats one retrieval match for the side panel.
func matchLines(m api.Match, added bool) []string {
	lines := []string{m.DisplayName()}
	if meta := joinNonEmpty(" · ", m.EntityType(), m.Locality()); meta != "" {
		lines = append(lines, meta)
	}
	if d := strings.TrimSpace(m.Metadata.Description); d != "" {
		lines = append(lines, clip(d, descRunes))
	}
	lines = append(lines, fmt.Sprintf("Score: %.1f%%  %s", m.Score*100, addLabel(added)))
	return lines
}

// factLines formats one graph fact for the side panel.
func factLines(f api.Fact, added bool) []string {
	lines := []string{f.Source + " → " + f.TargetID}
	if f.Rel != "" {
		lines = append(lines, f.Rel)
	}
	target := f.TargetName
	if d := strings.TrimSpace(f.TargetDesc); d != "" {
		target = joinNonEmpty(": ", target, clip(d, descRunes))
	}
	if target != "" {
		lines = append(lines, target)
	}
	if len(f.Labels) > 0 {
		lines = append(lines, strings.Join(f.Labels, ", "))
	}
	return append(lines, addLabel(added))
}

func addLabel(added bool) string {
	if added {
		return "Added"
	}
	return "Add to Graph"
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
