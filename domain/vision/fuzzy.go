package vision

import "strings"

// Similarity returns a normalized string similarity in [0,1] based on edit
// distance, after lowercasing and collapsing whitespace. Identical strings
// score 1, disjoint strings approach 0.
func Similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// ContainsSimilar scans text for a window resembling needle and returns the
// best Similarity score found. Used to spot OCR-mangled phrases inside a
// larger recognized block.
func ContainsSimilar(text, needle string) float64 {
	text = normalize(text)
	needle = normalize(needle)
	if needle == "" {
		return 1
	}
	if len(text) <= len(needle) {
		return Similarity(text, needle)
	}
	best := 0.0
	for i := 0; i+len(needle) <= len(text); i++ {
		if s := Similarity(text[i:i+len(needle)], needle); s > best {
			best = s
		}
	}
	return best
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
