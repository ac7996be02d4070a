package classify

import "context"

// ContentSource fetches and extracts preprocessed text for a URL. It is
// treated as opaque, possibly slow and possibly failing; implementations
// apply their own timeout.
type ContentSource interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Vectorizer converts raw text into the classifier's feature space. The
// vectorizer is immutable after initial training; retraining never refits it.
type Vectorizer interface {
	// Transform returns sparse term counts keyed by feature index.
	Transform(text string) map[int]float64
}

// Classifier predicts a topic label from vectorized features and supports
// incremental updates.
type Classifier interface {
	Predict(features map[int]float64) (string, error)
	// PartialFit updates the learned parameters with new labeled examples.
	// classes must cover every label in labels plus all previously seen
	// classes so the label space stays consistent.
	PartialFit(features []map[int]float64, labels []string, classes []string) error
	// Classes returns the label categories observed so far.
	Classes() []string
}

// ArtifactStore owns the paired vectorizer+model artifacts. The pair is
// loaded, persisted, backed up, and restored together; readers never observe
// a half-written pair.
type ArtifactStore interface {
	// Artifacts returns the current in-memory pair for read-only use.
	Artifacts() (Vectorizer, Classifier, error)
	// TrainingCopy returns the vectorizer alongside an independent deep copy
	// of the classifier, safe to mutate without affecting live inference.
	TrainingCopy() (Vectorizer, Classifier, error)
	// Persist atomically saves both artifacts and refreshes the in-memory
	// pair on success.
	Persist(vec Vectorizer, clf Classifier) error
	// Backup snapshots both artifacts and returns a backup identifier.
	Backup() (string, error)
	// Restore copies both artifacts back from the identified backup and
	// reloads the in-memory pair.
	Restore(backupID string) error
}

// Publisher emits pipeline milestone notifications (batch completed,
// retrain completed). Failures are logged, never fatal.
type Publisher interface {
	Publish(ctx context.Context, message string) error
	Close() error
}
