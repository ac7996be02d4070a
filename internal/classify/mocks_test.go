package classify

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock(now time.Time) *stubClock {
	return &stubClock{now: now}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubSource serves canned text per URL and counts fetches.
type stubSource struct {
	mu      sync.Mutex
	texts   map[string]string
	errs    map[string]error
	fetches int
}

func newStubSource() *stubSource {
	return &stubSource{texts: make(map[string]string), errs: make(map[string]error)}
}

func (s *stubSource) FetchText(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if err, ok := s.errs[url]; ok {
		return "", err
	}
	text, ok := s.texts[url]
	if !ok {
		return "", fmt.Errorf("unexpected fetch of %s", url)
	}
	return text, nil
}

func (s *stubSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// stubVectorizer maps every word to feature 0 so feature vectors stay tiny.
type stubVectorizer struct{}

func (stubVectorizer) Transform(text string) map[int]float64 {
	if text == "" {
		return map[int]float64{}
	}
	return map[int]float64{0: float64(len(text))}
}

// stubClassifier predicts a fixed label and records partial fits.
type stubClassifier struct {
	label      string
	classes    []string
	fitLabels  []string
	fitClasses []string
	fitErr     error
	predictErr error
}

func (c *stubClassifier) Predict(_ map[int]float64) (string, error) {
	if c.predictErr != nil {
		return "", c.predictErr
	}
	return c.label, nil
}

func (c *stubClassifier) PartialFit(_ []map[int]float64, labels, classes []string) error {
	if c.fitErr != nil {
		return c.fitErr
	}
	c.fitLabels = append(c.fitLabels, labels...)
	c.fitClasses = classes
	return nil
}

func (c *stubClassifier) Classes() []string { return c.classes }

// stubArtifacts implements ArtifactStore around stub artifacts with
// injectable failures.
type stubArtifacts struct {
	vec Vectorizer
	clf *stubClassifier

	backupID   string
	backupErr  error
	persistErr error
	restoreErr error

	persisted  bool
	backups    int
	restores   []string
	loadedCopy *stubClassifier
}

func newStubArtifacts(label string) *stubArtifacts {
	return &stubArtifacts{
		vec:      stubVectorizer{},
		clf:      &stubClassifier{label: label, classes: []string{label}},
		backupID: "backup-1",
	}
}

func (a *stubArtifacts) Artifacts() (Vectorizer, Classifier, error) {
	return a.vec, a.clf, nil
}

func (a *stubArtifacts) TrainingCopy() (Vectorizer, Classifier, error) {
	cp := *a.clf
	cp.classes = append([]string(nil), a.clf.classes...)
	a.loadedCopy = &cp
	return a.vec, &cp, nil
}

func (a *stubArtifacts) Persist(_ Vectorizer, clf Classifier) error {
	if a.persistErr != nil {
		return a.persistErr
	}
	a.persisted = true
	if sc, ok := clf.(*stubClassifier); ok {
		a.clf = sc
	}
	return nil
}

func (a *stubArtifacts) Backup() (string, error) {
	if a.backupErr != nil {
		return "", a.backupErr
	}
	a.backups++
	return a.backupID, nil
}

func (a *stubArtifacts) Restore(backupID string) error {
	if a.restoreErr != nil {
		return a.restoreErr
	}
	a.restores = append(a.restores, backupID)
	return nil
}

// stubPublisher records published messages.
type stubPublisher struct {
	mu       sync.Mutex
	messages []string
}

func (p *stubPublisher) Publish(_ context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

// stubIDs hands out sequential identifiers.
type stubIDs struct {
	n int
}

func (g *stubIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("batch-%d", g.n), nil
}

// stubBlobs records saved objects in memory.
type stubBlobs struct {
	objects map[string][]byte
	saveErr error
}

func newStubBlobs() *stubBlobs {
	return &stubBlobs{objects: make(map[string][]byte)}
}

func (b *stubBlobs) Save(_ context.Context, objectName string, data []byte) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.objects[objectName] = data
	return nil
}

func (b *stubBlobs) Load(_ context.Context, objectName string) ([]byte, error) {
	data, ok := b.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return data, nil
}
