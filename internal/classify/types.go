// Package classify implements the topic prediction pipeline: cache-backed
// single-URL prediction, batch fan-out with per-item failure isolation, and
// incremental retraining guarded by an artifact backup.
package classify

import (
	"time"

	"github.com/JakeFAU/topic-classifier/internal/store"
)

// PredictionResult is the outcome of a single-URL prediction.
type PredictionResult struct {
	Label           string
	WordFrequencies []store.WordCount
	FromCache       bool
}

// BatchItem is one per-URL outcome within a batch call. Exactly one of
// Label/Err is meaningful: failed items carry Err, successes carry Label and
// FromCache.
type BatchItem struct {
	URL       string
	Label     string
	FromCache bool
	Err       string
}

// Failed reports whether this item errored.
func (b BatchItem) Failed() bool { return b.Err != "" }

// BatchResult is the outcome of a batch prediction call.
type BatchResult struct {
	// Results holds one item per processed URL in submission order.
	Results []BatchItem
	// Grouped maps predicted label to the URLs that received it, in
	// processing order; errored items are excluded.
	Grouped map[string][]string
	// BatchID tags every history record written by this call.
	BatchID string
}

// RetrainResult is the outcome of a retraining call.
type RetrainResult struct {
	// DocumentCount is the number of labeled documents the classifier was
	// updated with.
	DocumentCount int
	Message       string
}

// Clock abstracts time.Now so cache freshness is testable.
type Clock interface {
	Now() time.Time
}

// IDGenerator creates unique identifiers for batches and requests.
type IDGenerator interface {
	NewID() (string, error)
}
