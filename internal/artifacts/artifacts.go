// Package artifacts owns the paired classifier artifacts on disk: the
// vectorizer and the model are loaded, persisted, backed up, and restored
// together, never independently, because a mismatched pair silently corrupts
// inference.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/classify"
	"github.com/JakeFAU/topic-classifier/internal/model"
)

const (
	vectorizerFile = "vectorizer.json"
	modelFile      = "model.json"
)

// Store keeps the live artifact pair in memory behind a read-write guard.
// The in-memory pair is refreshed only after a successful persist or
// restore, so readers never observe a half-written state.
type Store struct {
	mu        sync.RWMutex
	dir       string
	backupDir string
	vec       *model.Vectorizer
	clf       *model.NaiveBayes
	logger    *zap.Logger
}

// Open loads both artifacts from dir. Both files must exist; the service
// does not train an initial model.
func Open(dir, backupDir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(backupDir, 0o750); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	vec, clf, err := readPair(dir)
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:       dir,
		backupDir: backupDir,
		vec:       vec,
		clf:       clf,
		logger:    logger,
	}, nil
}

// Artifacts returns the live pair for read-only use.
func (s *Store) Artifacts() (classify.Vectorizer, classify.Classifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vec, s.clf, nil
}

// TrainingCopy returns the vectorizer with a deep copy of the classifier,
// safe to partial-fit without affecting live inference.
func (s *Store) TrainingCopy() (classify.Vectorizer, classify.Classifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vec, s.clf.Clone(), nil
}

// Persist saves both artifacts via write-then-rename and swaps the live pair
// on success. The vectorizer is written too even though it never changes, so
// the on-disk pair always originates from one persist.
func (s *Store) Persist(vec classify.Vectorizer, clf classify.Classifier) error {
	concreteVec, ok := vec.(*model.Vectorizer)
	if !ok {
		return fmt.Errorf("unexpected vectorizer type %T", vec)
	}
	concreteClf, ok := clf.(*model.NaiveBayes)
	if !ok {
		return fmt.Errorf("unexpected classifier type %T", clf)
	}

	if err := WritePair(s.dir, concreteVec, concreteClf); err != nil {
		return err
	}

	s.mu.Lock()
	s.vec = concreteVec
	s.clf = concreteClf
	s.mu.Unlock()
	return nil
}

// Backup snapshots both artifact files under a timestamp identifier and
// returns it. Backups accumulate; pruning is an operator concern.
func (s *Store) Backup() (string, error) {
	id := time.Now().UTC().Format("20060102_150405.000000000")
	if err := copyFile(filepath.Join(s.dir, vectorizerFile), s.backupPath(vectorizerFile, id)); err != nil {
		return "", fmt.Errorf("backup vectorizer: %w", err)
	}
	if err := copyFile(filepath.Join(s.dir, modelFile), s.backupPath(modelFile, id)); err != nil {
		return "", fmt.Errorf("backup model: %w", err)
	}
	s.logger.Info("created model backup", zap.String("backup_id", id))
	return id, nil
}

// Restore copies both artifacts back from the identified backup and reloads
// the live pair. Vectorizer and model are restored together or not at all
// from the caller's point of view: the in-memory swap happens only after
// both files are back and parse.
func (s *Store) Restore(backupID string) error {
	if err := copyFile(s.backupPath(vectorizerFile, backupID), filepath.Join(s.dir, vectorizerFile)); err != nil {
		return fmt.Errorf("restore vectorizer: %w", err)
	}
	if err := copyFile(s.backupPath(modelFile, backupID), filepath.Join(s.dir, modelFile)); err != nil {
		return fmt.Errorf("restore model: %w", err)
	}
	vec, clf, err := readPair(s.dir)
	if err != nil {
		return fmt.Errorf("reload restored artifacts: %w", err)
	}
	s.mu.Lock()
	s.vec = vec
	s.clf = clf
	s.mu.Unlock()
	return nil
}

func (s *Store) backupPath(name, id string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	return filepath.Join(s.backupDir, fmt.Sprintf("%s_%s%s", base, id, ext))
}

// WritePair saves both artifacts to dir atomically (write temp, rename).
// Exported for the offline training job and tests.
func WritePair(dir string, vec *model.Vectorizer, clf *model.NaiveBayes) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(dir, vectorizerFile), vec); err != nil {
		return fmt.Errorf("write vectorizer: %w", err)
	}
	if err := writeJSONAtomic(filepath.Join(dir, modelFile), clf); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

func readPair(dir string) (*model.Vectorizer, *model.NaiveBayes, error) {
	var vec model.Vectorizer
	if err := readJSON(filepath.Join(dir, vectorizerFile), &vec); err != nil {
		return nil, nil, fmt.Errorf("load vectorizer: %w", err)
	}
	var clf model.NaiveBayes
	if err := readJSON(filepath.Join(dir, modelFile), &clf); err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	return &vec, &clf, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

// writeJSONAtomic writes to a temp file in the same directory and renames it
// into place, so concurrent readers see either the old or the new file.
func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
