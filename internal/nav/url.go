// Package nav connects the chat and graph views. The selection travels only
// as the ids query parameter of a graph URL; the graph side decodes it and
// loads the matching graph.
package nav

import (
	"net/url"
	"strings"

	"github.com/msalah0e/tripgraph/internal/selection"
)

const (
	ChatPath  = "/"
	GraphPath = "/graph"
	Param     = "ids"
)

// GraphURL encodes the selection as /graph?ids=a,b. Each ID is query-escaped
// so an ID holding a comma survives; the separators stay literal.
func GraphURL(set *selection.Set) string {
	ids := set.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = url.QueryEscape(id)
	}
	return GraphPath + "?" + Param + "=" + strings.Join(parts, ",")
}

// DecodeIDs extracts the ID list from a graph URL.
func DecodeIDs(rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return IDsFromRawQuery(u.RawQuery), nil
}

// IsGraphURL reports whether rawURL points at the graph view.
func IsGraphURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Path == GraphPath
}

// IDsFromRawQuery splits the ids parameter on literal commas before
// unescaping each part, then trims and drops empties. Duplicates are kept.
func IDsFromRawQuery(rawQuery string) []string {
	var ids []string
	for _, pair := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err != nil || k != Param {
			continue
		}
		for _, part := range strings.Split(value, ",") {
			id, err := url.QueryUnescape(part)
			if err != nil {
				id = part
			}
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// IDsFromQuery reads already-decoded query values the same way
// selection.ParseIDs reads a serialized set.
func IDsFromQuery(values url.Values) []string {
	var ids []string
	for _, v := range values[Param] {
		ids = append(ids, selection.ParseIDs(v)...)
	}
	return ids
}
