package intent

import "strings"

// Similarity scores how close a candidate name is to a known project title.
// Exact equality returns 1.0, containment returns 0.7 plus a length-ratio
// bonus, and everything else blends word overlap with a positional character
// ratio. This is a cheap heuristic, not edit distance; it trades precision
// for zero allocation pressure on the hot path.
func Similarity(candidate, title string) float64 {
	a := strings.ToLower(strings.TrimSpace(candidate))
	b := strings.ToLower(strings.TrimSpace(title))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return 0.7 + 0.3*float64(len(shorter))/float64(len(longer))
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	seen := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		seen[w] = true
	}
	shared := 0
	for _, w := range wordsB {
		if seen[w] {
			shared++
		}
	}
	maxWords := len(wordsA)
	if len(wordsB) > maxWords {
		maxWords = len(wordsB)
	}
	wordRatio := float64(shared) / float64(maxWords)

	matched := 0
	for i := 0; i < len(shorter); i++ {
		if a[i] == b[i] {
			matched++
		}
	}
	charRatio := float64(matched) / float64(len(shorter))

	return 0.6*wordRatio + 0.4*charRatio
}
