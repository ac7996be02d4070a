package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/metrics"
	"github.com/JakeFAU/topic-classifier/internal/store"
)

// Engine orchestrates a single-URL prediction: cache lookup, content fetch,
// inference, cache population, and history append.
type Engine struct {
	cache     *Cache
	history   store.HistoryStore
	source    ContentSource
	artifacts ArtifactStore
	logger    *zap.Logger
}

// NewEngine wires the prediction engine. All collaborators are required
// except logger, which defaults to a nop logger.
func NewEngine(
	cache *Cache,
	history store.HistoryStore,
	source ContentSource,
	artifacts ArtifactStore,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:     cache,
		history:   history,
		source:    source,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Predict classifies the page at url and records the served prediction in
// history. Cache hits skip the fetch and inference entirely; the cached
// word frequencies are authoritative and never recomputed.
func (e *Engine) Predict(ctx context.Context, url, userID string) (PredictionResult, error) {
	return e.predict(ctx, url, userID, "")
}

// predict is the shared path for single and batch predictions; batchID tags
// the history record when non-empty.
func (e *Engine) predict(ctx context.Context, url, userID, batchID string) (PredictionResult, error) {
	if strings.TrimSpace(url) == "" {
		return PredictionResult{}, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	entry, hit, err := e.cache.Lookup(ctx, url)
	if err != nil {
		return PredictionResult{}, err
	}
	if hit {
		metrics.RecordCacheLookup(true)
		// History tracks served predictions, not computed ones, so a hit
		// still appends.
		if err := e.appendHistory(ctx, url, entry.Text, entry.Label, userID, batchID); err != nil {
			return PredictionResult{}, err
		}
		metrics.RecordPrediction("cache", "ok")
		return PredictionResult{
			Label:           entry.Label,
			WordFrequencies: entry.WordFrequencies,
			FromCache:       true,
		}, nil
	}
	metrics.RecordCacheLookup(false)

	text, err := e.source.FetchText(ctx, url)
	if err != nil {
		// No history or cache entry is written on a failed fetch.
		metrics.RecordPrediction("fetch", "error")
		return PredictionResult{}, &FetchError{URL: url, Err: err}
	}

	label, err := e.infer(text)
	if err != nil {
		metrics.RecordPrediction("model", "error")
		return PredictionResult{}, err
	}
	wordFrequencies := WordFrequencies(text)

	if err := e.cache.Store(ctx, url, text, label, wordFrequencies); err != nil {
		return PredictionResult{}, err
	}
	if err := e.appendHistory(ctx, url, text, label, userID, batchID); err != nil {
		return PredictionResult{}, err
	}

	metrics.RecordPrediction("model", "ok")
	return PredictionResult{
		Label:           label,
		WordFrequencies: wordFrequencies,
		FromCache:       false,
	}, nil
}

func (e *Engine) infer(text string) (string, error) {
	vec, clf, err := e.artifacts.Artifacts()
	if err != nil {
		return "", &PersistenceError{Op: "load artifacts", Err: err}
	}
	label, err := clf.Predict(vec.Transform(text))
	if err != nil {
		return "", fmt.Errorf("predict label: %w", err)
	}
	return label, nil
}

func (e *Engine) appendHistory(ctx context.Context, url, text, label, userID, batchID string) error {
	rec := store.HistoryRecord{
		URL:     url,
		Text:    text,
		Label:   label,
		UserID:  userID,
		BatchID: batchID,
	}
	if _, err := e.history.Append(ctx, rec); err != nil {
		return fmt.Errorf("append history for %s: %w", url, err)
	}
	return nil
}
