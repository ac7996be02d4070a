package classify

import (
	"sort"
	"strings"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

const (
	minWordLength = 4
	maxWordCounts = 100
)

// WordFrequencies summarizes text for word-cloud rendering: words of at
// least four characters, counted, ordered by descending count with ties
// broken by first occurrence, truncated to the top 100.
func WordFrequencies(text string) []store.WordCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, word := range strings.Fields(text) {
		if len(word) < minWordLength {
			continue
		}
		if _, ok := counts[word]; !ok {
			firstSeen[word] = i
		}
		counts[word]++
	}

	out := make([]store.WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, store.WordCount{Word: word, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Word] < firstSeen[out[j].Word]
	})
	if len(out) > maxWordCounts {
		out = out[:maxWordCounts]
	}
	return out
}
