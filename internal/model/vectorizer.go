// Package model holds the feature extractor and classifier artifacts: a
// vocabulary-based count vectorizer paired with a multinomial naive Bayes
// model. Both are JSON-serializable so they can be persisted, backed up, and
// restored as files.
package model

import (
	"sort"
	"strings"
)

// Vectorizer maps tokens to fixed feature indices. The vocabulary is fixed
// at initial training time; the feature space never changes afterwards,
// which is what keeps previously persisted classifiers compatible.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
}

// FitVectorizer builds a vocabulary over the given documents. Used by the
// offline training job and by tests; the service itself only loads
// previously fitted vectorizers.
func FitVectorizer(documents []string) *Vectorizer {
	seen := make(map[string]struct{})
	var terms []string
	for _, doc := range documents {
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				terms = append(terms, tok)
			}
		}
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return &Vectorizer{Vocabulary: vocab}
}

// Transform returns sparse term counts for text, keyed by feature index.
// Tokens outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	features := make(map[int]float64)
	for _, tok := range tokenize(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			features[idx]++
		}
	}
	return features
}

// NumFeatures returns the dimensionality of the feature space.
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
