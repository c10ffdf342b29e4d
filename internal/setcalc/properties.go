package setcalc

import (
	"sort"
	"strings"
)

// DefaultIgnoredProperties are property ids that are never counted nor exported.
var DefaultIgnoredProperties = []string{
	"162", "166", "167", "168", "169", "170", "171",
	"175", "176", "177", "178", "179", "180",
	"182", "183", "184", "187", "188", "189",
	"192", "194", "195", "196", "198", "200",
	"267", "268",
}

// IgnoreSet is a denylist of property ids.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds a denylist from ids; surrounding whitespace is trimmed.
func NewIgnoreSet(ids ...string) IgnoreSet {
	s := make(IgnoreSet, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is denylisted.
func (s IgnoreSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// PropertySource holds the raw property strings of one component.
type PropertySource struct {
	Item      string
	Variation string
}

func (p PropertySource) merged() string {
	item, variation := strings.TrimSpace(p.Item), strings.TrimSpace(p.Variation)
	switch {
	case item != "" && variation != "":
		return p.Item + ";" + p.Variation
	case item != "":
		return p.Item
	default:
		return p.Variation
	}
}

// PropertyList is the set-level property output: parallel id and value lists.
// An empty value means the id is ambiguous and left for manual resolution.
type PropertyList struct {
	IDs    []string
	Values []string
}

type componentProps struct {
	order  []string
	values map[string]string
}

// parseComponent splits one component's merged property string. The first
// value of an id wins; repeated ids are reported in conflicts.
func parseComponent(raw string, ignore IgnoreSet, conflicts map[string]bool) componentProps {
	cp := componentProps{values: make(map[string]string)}
	for _, piece := range strings.Split(raw, ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		id, val, ok := strings.Cut(piece, "=")
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		if id == "" || ignore.Has(id) {
			continue
		}
		if _, seen := cp.values[id]; seen {
			conflicts[id] = true
			continue
		}
		cp.values[id] = val
		cp.order = append(cp.order, id)
	}
	return cp
}

// Reconcile merges the properties of all components of a set. An id keeps its
// value only when exactly one component carries it and no component repeats it.
func Reconcile(sources []PropertySource, ignore IgnoreSet) PropertyList {
	occurrences := make(map[string]int)
	firstValue := make(map[string]string)
	conflicts := make(map[string]bool)

	for _, src := range sources {
		raw := src.merged()
		if raw == "" {
			continue
		}
		cp := parseComponent(raw, ignore, conflicts)
		for _, id := range cp.order {
			if occurrences[id] == 0 {
				firstValue[id] = cp.values[id]
			}
			occurrences[id]++
		}
	}

	ids := make([]string, 0, len(occurrences))
	for id := range occurrences {
		ids = append(ids, id)
	}
	SortPropertyIDs(ids)

	out := PropertyList{
		IDs:    ids,
		Values: make([]string, len(ids)),
	}
	for i, id := range ids {
		if occurrences[id] == 1 && !conflicts[id] {
			out.Values[i] = firstValue[id]
		}
	}
	return out
}

// SortPropertyIDs sorts numerically when every id is made of digits only and
// lexicographically otherwise.
func SortPropertyIDs(ids []string) {
	numeric := true
	for _, id := range ids {
		if !isDigits(id) {
			numeric = false
			break
		}
	}
	if !numeric {
		sort.Strings(ids)
		return
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessNumeric(ids[i], ids[j])
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// lessNumeric compares digit strings of any length by value, then textually.
func lessNumeric(a, b string) bool {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}
