package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/metrics"
	"github.com/JakeFAU/topic-classifier/internal/store"
)

// Retrainer incrementally updates the classifier from user-curated history.
// The artifact pair is mutated under a backup guard: fit or persist failures
// restore the pre-retrain snapshot so the live vectorizer and model never
// diverge from each other.
type Retrainer struct {
	// mu serializes retrain calls; the artifacts are a shared singleton pair.
	mu        sync.Mutex
	cache     *Cache
	history   store.HistoryStore
	source    ContentSource
	artifacts ArtifactStore
	publisher Publisher
	logger    *zap.Logger
}

// NewRetrainer wires the retraining coordinator. publisher may be nil.
func NewRetrainer(
	cache *Cache,
	history store.HistoryStore,
	source ContentSource,
	artifacts ArtifactStore,
	publisher Publisher,
	logger *zap.Logger,
) *Retrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrainer{
		cache:     cache,
		history:   history,
		source:    source,
		artifacts: artifacts,
		publisher: publisher,
		logger:    logger,
	}
}

// Retrain partial-fits the classifier with the labeled documents behind urls.
// Only URLs with prior history for userID are eligible; their text comes from
// the cache when fresh, otherwise from a new fetch. The vectorizer itself is
// never refit.
func (r *Retrainer) Retrain(ctx context.Context, urls []string, userID string) (RetrainResult, error) {
	if len(urls) == 0 {
		return RetrainResult{}, fmt.Errorf("%w: no URLs provided", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	texts, labels, err := r.collect(ctx, urls, userID)
	if err != nil {
		return RetrainResult{}, err
	}
	if len(texts) == 0 {
		metrics.RecordRetrain("no_data")
		return RetrainResult{}, fmt.Errorf("%w: could not retrieve content from any of the provided URLs", ErrNoUsableData)
	}

	// Best-effort safety net: a failed backup is logged but does not block
	// retraining.
	backupID, err := r.artifacts.Backup()
	if err != nil {
		r.logger.Warn("model backup failed, retraining without restore guard", zap.Error(err))
		backupID = ""
	}

	if err := r.fitAndPersist(texts, labels); err != nil {
		metrics.RecordRetrain("error")
		return RetrainResult{}, r.rollback(backupID, err)
	}

	metrics.RecordRetrain("ok")
	result := RetrainResult{
		DocumentCount: len(texts),
		Message:       fmt.Sprintf("model successfully retrained with %d documents", len(texts)),
	}
	r.notify(ctx, result)
	return result, nil
}

// collect resolves (text, label) pairs for the eligible subset of urls.
// Per-URL fetch failures are logged and skipped; store failures propagate.
func (r *Retrainer) collect(ctx context.Context, urls []string, userID string) ([]string, []string, error) {
	var texts, labels []string
	for _, url := range urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		rec, err := r.history.LatestForUser(ctx, url, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// No labeled history for this user means nothing to learn.
				continue
			}
			return nil, nil, fmt.Errorf("history lookup %s: %w", url, err)
		}

		text, err := r.resolveText(ctx, url, rec.Label)
		if err != nil {
			r.logger.Warn("skipping URL during retraining",
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		if text == "" {
			continue
		}
		texts = append(texts, text)
		labels = append(labels, rec.Label)
	}
	return texts, labels, nil
}

// resolveText prefers a live cache entry and otherwise fetches fresh
// content, opportunistically caching it under the historical label so later
// passes avoid re-fetching.
func (r *Retrainer) resolveText(ctx context.Context, url, label string) (string, error) {
	entry, hit, err := r.cache.Lookup(ctx, url)
	if err != nil {
		return "", err
	}
	if hit {
		return entry.Text, nil
	}
	text, err := r.source.FetchText(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if err := r.cache.Store(ctx, url, text, label, WordFrequencies(text)); err != nil {
		// The text is already in hand; a failed opportunistic cache write
		// should not cost us the document.
		r.logger.Warn("opportunistic cache write failed", zap.String("url", url), zap.Error(err))
	}
	return text, nil
}

// fitAndPersist applies the incremental update to a clone and persists both
// artifacts; the live pair is swapped only after a successful persist.
func (r *Retrainer) fitAndPersist(texts, labels []string) error {
	vec, updated, err := r.artifacts.TrainingCopy()
	if err != nil {
		return &PersistenceError{Op: "load artifacts", Err: err}
	}

	features := make([]map[int]float64, len(texts))
	for i, text := range texts {
		features[i] = vec.Transform(text)
	}

	if err := updated.PartialFit(features, labels, unionClasses(updated.Classes(), labels)); err != nil {
		return fmt.Errorf("partial fit: %w", err)
	}
	if err := r.artifacts.Persist(vec, updated); err != nil {
		return &PersistenceError{Op: "persist artifacts", Err: err}
	}
	return nil
}

// rollback attempts exactly one restore from the pre-retrain backup and
// folds its outcome into the returned error.
func (r *Retrainer) rollback(backupID string, cause error) error {
	if backupID == "" {
		return fmt.Errorf("%w (no backup available to restore)", cause)
	}
	if restoreErr := r.artifacts.Restore(backupID); restoreErr != nil {
		r.logger.Error("restore from backup failed",
			zap.String("backup_id", backupID),
			zap.Error(restoreErr),
		)
		return fmt.Errorf("%w: %v (restore failed: %v)", ErrIndeterminateState, cause, restoreErr)
	}
	r.logger.Info("restored classifier artifacts from backup", zap.String("backup_id", backupID))
	return fmt.Errorf("%w (restored from backup)", cause)
}

func (r *Retrainer) notify(ctx context.Context, result RetrainResult) {
	if r.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":     "retrain_completed",
		"documents": result.DocumentCount,
	})
	if err != nil {
		return
	}
	if err := r.publisher.Publish(ctx, string(payload)); err != nil {
		r.logger.Warn("retrain notification failed", zap.Error(err))
	}
}

// unionClasses merges previously seen classes with the new labels, sorted
// for determinism.
func unionClasses(existing, labels []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(labels))
	var out []string
	for _, c := range existing {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	for _, c := range labels {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
