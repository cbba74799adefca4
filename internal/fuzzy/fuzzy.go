// Package fuzzy suggests recognized launcher flags for mistyped tokens.
// A typo leaves the token in place after the program, so the launcher never
// sees the option that was meant; naming the near miss is the only hint the
// user gets.
package fuzzy

import (
	"cmp"
	"slices"
	"strings"
)

// Matcher finds candidates within a maximum edit distance of a token.
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher accepting at most maxDistance edits.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   4, // "--x" style tokens are too short to guess at
	}
}

// Match is one candidate close to the input.
type Match struct {
	Value    string
	Distance int
	// Prefix is the length of the normalized prefix shared with the input.
	Prefix int
}

// FindBest returns the closest candidate, or "" when none is close enough.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns every candidate within reach of input: fewest edits
// first, then longest shared prefix, then candidate order. A candidate that
// equals input after normalization is a match proper, not a near miss, and is
// left out.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}
	in := normalize(input)

	var matches []Match
	for _, c := range candidates {
		nc := normalize(c)
		if nc == in {
			continue
		}
		d := m.distance(in, nc)
		if d > m.maxDistance {
			continue
		}
		matches = append(matches, Match{Value: c, Distance: d, Prefix: commonPrefix(in, nc)})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(b.Prefix, a.Prefix)
	})
	return matches
}

// distance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and swaps of adjacent bytes each cost
// one. Results above maxDistance are reported as maxDistance+1.
func (m *Matcher) distance(a, b string) int {
	limit := m.maxDistance + 1
	if diff := len(a) - len(b); diff >= limit || -diff >= limit {
		return limit
	}
	if a == "" || b == "" {
		return max(len(a), len(b))
	}

	// Three rolling rows: i-2 (for swaps), i-1 and i.
	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			cur[j] = d
			rowMin = min(rowMin, d)
		}
		// Row minima never decrease.
		if rowMin >= limit {
			return limit
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return min(prev[len(b)], limit)
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// normalize lowercases and folds '_' to '-', matching how launchers treat
// option spellings.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}

// FindBestFlag returns the flag in flags closest to input.
func FindBestFlag(input string, flags []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, flags)
}

// FindSuggestions returns up to maxSuggestions candidates, best first.
func FindSuggestions(input string, candidates []string, maxDistance, maxSuggestions int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Value)
	}
	return out
}
