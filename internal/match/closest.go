package match

import (
	"cmp"
	"slices"
)

// DefaultThreshold is the lowest Similarity Closest reports.
const DefaultThreshold = 0.6

// Candidate is a known name with its similarity to a query.
type Candidate struct {
	Name  string
	Score float64
}

// Closest returns up to limit names scoring at least threshold against
// query, best first. Ties keep the order of names. A limit below one means
// no limit.
func Closest(query string, names []string, threshold float64, limit int) []Candidate {
	var out []Candidate

	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		if score := Similarity(query, name); score >= threshold {
			out = append(out, Candidate{Name: name, Score: score})
		}
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

// Names returns the candidate names in rank order.
func Names(cands []Candidate) []string {
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.Name
	}

	return names
}
