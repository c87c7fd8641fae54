// Package selection holds the set of entity IDs a user has picked for the graph view.
package selection

import "strings"

// Set is an insertion-ordered set of entity IDs. Order is kept for display only;
// equality and membership ignore it. The zero value is not usable; call New.
type Set struct {
	ids   []string
	index map[string]struct{}
}

// New returns a set holding ids, trimmed, without blanks or duplicates.
func New(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Parse builds a set from its comma-joined form.
func Parse(text string) *Set {
	return New(ParseIDs(text)...)
}

// ParseIDs splits text on commas, trims each part and drops empties.
// Duplicates are kept.
func ParseIDs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// Toggle removes id when present and adds it otherwise. It reports whether id
// is a member afterwards.
func (s *Set) Toggle(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// Add inserts id and reports whether it was newly added.
func (s *Set) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id string) bool {
	id = strings.TrimSpace(id)
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Contains(id string) bool {
	_, ok := s.index[strings.TrimSpace(id)]
	return ok
}

func (s *Set) Clear() {
	s.ids = nil
	s.index = make(map[string]struct{})
}

func (s *Set) Len() int { return len(s.ids) }

// IDs returns the members in insertion order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Equal reports set equality, ignoring order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.index {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Serialize returns the canonical comma-joined form.
func (s *Set) Serialize() string {
	return strings.Join(s.ids, ",")
}

func (s *Set) String() string { return s.Serialize() }
