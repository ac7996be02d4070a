// Package textproc normalizes extracted page text before inference: strip
// non-alphabetic characters, lowercase, and drop stopwords. Lemmatization is
// deliberately out of scope; the model tolerates inflected forms.
package textproc

import (
	"strings"
	"unicode"
)

// stopwords covers common English function words plus terms that show up in
// scraped boilerplate (ad-blocker notices, error pages) and add no signal.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "than", "so",
		"of", "to", "in", "on", "at", "by", "for", "with", "from", "as",
		"is", "are", "was", "were", "be", "been", "being", "am",
		"it", "its", "this", "that", "these", "those", "there", "here",
		"he", "she", "they", "them", "his", "her", "their", "we", "you",
		"i", "me", "my", "our", "your", "us",
		"do", "does", "did", "done", "have", "has", "had", "having",
		"will", "would", "can", "could", "shall", "should", "may", "might",
		"must", "not", "no", "nor", "only", "own", "same", "such",
		"what", "which", "who", "whom", "when", "where", "why", "how",
		"all", "any", "both", "each", "few", "more", "most", "other",
		"some", "very", "too", "just", "about", "against", "between",
		"into", "through", "during", "before", "after", "above", "below",
		"up", "down", "out", "off", "over", "under", "again", "further",
		"also", "said", "error", "please", "ad", "blocker", "site",
		"always", "however",
	} {
		stopwords[w] = struct{}{}
	}
}

// Preprocess filters raw extracted text down to lowercase alphabetic tokens
// with stopwords removed, joined by single spaces.
func Preprocess(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	var out []string
	for _, tok := range strings.Fields(strings.ToLower(cleaned)) {
		if len(tok) < 2 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}
