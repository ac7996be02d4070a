package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitVectorizerBuildsSortedVocabulary(t *testing.T) {
	t.Parallel()

	v := FitVectorizer([]string{"go is fast", "rust is fast"})

	require.Equal(t, map[string]int{
		"fast": 0,
		"go":   1,
		"is":   2,
		"rust": 3,
	}, v.Vocabulary)
	require.Equal(t, 4, v.NumFeatures())
}

func TestTransformCountsKnownTokens(t *testing.T) {
	t.Parallel()

	v := FitVectorizer([]string{"go is fast"})

	features := v.Transform("Go go UNKNOWN is")
	require.Equal(t, map[int]float64{
		v.Vocabulary["go"]: 2,
		v.Vocabulary["is"]: 1,
	}, features)
}

func TestTransformEmptyText(t *testing.T) {
	t.Parallel()

	v := FitVectorizer([]string{"go"})
	require.Empty(t, v.Transform(""))
}
