package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrUntrained signals a prediction against a model with no fitted classes.
var ErrUntrained = errors.New("model has no trained classes")

// NaiveBayes is a multinomial naive Bayes classifier over the vectorizer's
// feature space. It keeps raw counts rather than probabilities so
// incremental updates are exact: PartialFit adds counts, Predict derives
// smoothed log-likelihoods on the fly.
type NaiveBayes struct {
	// Alpha is the Laplace smoothing constant.
	Alpha float64 `json:"alpha"`
	// ClassOrder preserves first-seen order for deterministic tie-breaking.
	ClassOrder []string `json:"classes"`
	// DocCounts is the number of training documents seen per class.
	DocCounts map[string]float64 `json:"doc_counts"`
	// TermCounts accumulates per-class term counts by feature index.
	TermCounts map[string]map[int]float64 `json:"term_counts"`
	// TotalTerms is the per-class sum over TermCounts.
	TotalTerms map[string]float64 `json:"total_terms"`
	// NumFeatures is the vectorizer's feature-space size, used for smoothing.
	NumFeatures int `json:"num_features"`
}

// NewNaiveBayes creates an empty model bound to a feature space of the given
// size.
func NewNaiveBayes(numFeatures int) *NaiveBayes {
	return &NaiveBayes{
		Alpha:       1.0,
		DocCounts:   make(map[string]float64),
		TermCounts:  make(map[string]map[int]float64),
		TotalTerms:  make(map[string]float64),
		NumFeatures: numFeatures,
	}
}

// Predict returns the most probable class for the given sparse term counts.
// Ties resolve to the earliest-seen class.
func (nb *NaiveBayes) Predict(features map[int]float64) (string, error) {
	if len(nb.ClassOrder) == 0 {
		return "", ErrUntrained
	}
	var totalDocs float64
	for _, n := range nb.DocCounts {
		totalDocs += n
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, class := range nb.ClassOrder {
		score := math.Log(nb.DocCounts[class] / totalDocs)
		denom := math.Log(nb.TotalTerms[class] + nb.Alpha*float64(nb.NumFeatures))
		for idx, count := range features {
			score += count * (math.Log(nb.TermCounts[class][idx]+nb.Alpha) - denom)
		}
		if score > bestScore {
			bestScore = score
			best = class
		}
	}
	return best, nil
}

// PartialFit updates the model with new labeled examples. classes must
// include every label in labels; classes not seen before are added to the
// label space, which otherwise stays intact.
func (nb *NaiveBayes) PartialFit(features []map[int]float64, labels []string, classes []string) error {
	if len(features) != len(labels) {
		return fmt.Errorf("feature/label length mismatch: %d != %d", len(features), len(labels))
	}
	allowed := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		allowed[c] = struct{}{}
		if _, ok := nb.DocCounts[c]; !ok {
			nb.ClassOrder = append(nb.ClassOrder, c)
			nb.DocCounts[c] = 0
			nb.TermCounts[c] = make(map[int]float64)
			nb.TotalTerms[c] = 0
		}
	}
	for _, label := range labels {
		if _, ok := allowed[label]; !ok {
			return fmt.Errorf("label %q not in declared classes", label)
		}
	}

	for i, x := range features {
		class := labels[i]
		nb.DocCounts[class]++
		for idx, count := range x {
			nb.TermCounts[class][idx] += count
			nb.TotalTerms[class] += count
		}
	}
	return nil
}

// Classes returns the label categories observed so far, in first-seen order.
func (nb *NaiveBayes) Classes() []string {
	out := make([]string, len(nb.ClassOrder))
	copy(out, nb.ClassOrder)
	return out
}

// Clone returns an independent deep copy.
func (nb *NaiveBayes) Clone() *NaiveBayes {
	cp := NewNaiveBayes(nb.NumFeatures)
	cp.Alpha = nb.Alpha
	cp.ClassOrder = append([]string(nil), nb.ClassOrder...)
	for c, n := range nb.DocCounts {
		cp.DocCounts[c] = n
	}
	for c, terms := range nb.TermCounts {
		tc := make(map[int]float64, len(terms))
		for idx, n := range terms {
			tc[idx] = n
		}
		cp.TermCounts[c] = tc
	}
	for c, n := range nb.TotalTerms {
		cp.TotalTerms[c] = n
	}
	return cp
}
