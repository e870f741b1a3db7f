package fuzzy

import (
	"sort"
	"strings"
)

// LevenshteinDistance calculates the edit distance between two strings.
// Both sides are normalized first (lowercase, accents removed).
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m, n := len(r1), len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// two rows are enough
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold is the typo tolerance for a query of this length
func Threshold(query string) int {
	n := len([]rune(normalizeString(query)))
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Match checks if query fuzzy-matches text within threshold edits
func Match(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" {
		return true
	}
	if text == "" {
		return false
	}

	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
	}

	// multi-word queries against short texts ("ana lopez" vs "ana lópes")
	if len(text) < 50 && strings.Contains(query, " ") {
		return LevenshteinDistance(query, text) <= threshold+len(query)/5
	}
	return false
}

// MatchAny reports whether query matches any of the fields
func MatchAny(query string, fields ...string) bool {
	threshold := Threshold(query)
	for _, f := range fields {
		if Match(query, f, threshold) {
			return true
		}
	}
	return false
}

// Score rates how well query matches the fields. Earlier fields weigh more.
func Score(query string, fields ...string) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}
	score := 0.0
	for i, field := range fields {
		weight := 1.0 / float64(i+1)
		norm := normalizeString(field)
		switch {
		case norm == query:
			score += 250 * weight
		case strings.Contains(norm, query):
			score += 100 * weight
			if containsWord(norm, query) {
				score += 50 * weight
			}
		default:
			for _, word := range strings.Fields(norm) {
				if strings.HasPrefix(word, query) {
					score += 40 * weight
					continue
				}
				if dist := LevenshteinDistance(query, word); dist <= 2 {
					score += (50 - float64(dist)*15) * weight
				}
			}
		}
	}
	return score
}

// Rank keeps the items whose fields match query, best first. Items with equal scores keep
// their input order.
func Rank[T any](query string, items []T, fields func(T) []string) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}
	type scored struct {
		item  T
		score float64
	}
	var hits []scored
	for _, item := range items {
		fs := fields(item)
		if !MatchAny(query, fs...) {
			continue
		}
		hits = append(hits, scored{item: item, score: Score(query, fs...)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]T, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.item)
	}
	return out
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// normalizeString lowercases, strips accents and collapses whitespace
func normalizeString(s string) string {
	s = strings.ToLower(s)
	s = removeAccents(s)
	return strings.Join(strings.Fields(s), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents maps Spanish diacritics to their ASCII base letters
func removeAccents(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'á', 'à', 'ä', 'â':
			result.WriteRune('a')
		case 'é', 'è', 'ë', 'ê':
			result.WriteRune('e')
		case 'í', 'ì', 'ï', 'î':
			result.WriteRune('i')
		case 'ó', 'ò', 'ö', 'ô':
			result.WriteRune('o')
		case 'ú', 'ù', 'ü', 'û':
			result.WriteRune('u')
		case 'ñ':
			result.WriteRune('n')
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
