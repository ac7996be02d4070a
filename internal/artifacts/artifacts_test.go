package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/topic-classifier/internal/model"
)

func seedArtifacts(t *testing.T) (dir, backupDir string) {
	t.Helper()
	dir = t.TempDir()
	backupDir = filepath.Join(dir, "backups")

	vec := model.FitVectorizer([]string{"goal match", "goroutine channel"})
	clf := model.NewNaiveBayes(vec.NumFeatures())
	require.NoError(t, clf.PartialFit(
		[]map[int]float64{vec.Transform("goal match"), vec.Transform("goroutine channel")},
		[]string{"sports", "tech"},
		[]string{"sports", "tech"},
	))
	require.NoError(t, WritePair(dir, vec, clf))
	return dir, backupDir
}

func TestOpenRequiresBothFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Open(dir, filepath.Join(dir, "backups"), nil)
	require.Error(t, err)
}

func TestOpenLoadsPair(t *testing.T) {
	t.Parallel()

	dir, backupDir := seedArtifacts(t)
	s, err := Open(dir, backupDir, nil)
	require.NoError(t, err)

	vec, clf, err := s.Artifacts()
	require.NoError(t, err)

	label, err := clf.Predict(vec.Transform("goal match"))
	require.NoError(t, err)
	require.Equal(t, "sports", label)
}

func TestTrainingCopyDoesNotAffectLivePair(t *testing.T) {
	t.Parallel()

	dir, backupDir := seedArtifacts(t)
	s, err := Open(dir, backupDir, nil)
	require.NoError(t, err)

	vec, copyClf, err := s.TrainingCopy()
	require.NoError(t, err)
	require.NoError(t, copyClf.PartialFit(
		[]map[int]float64{vec.Transform("goal goal")},
		[]string{"sports"},
		[]string{"sports", "tech"},
	))

	_, liveClf, err := s.Artifacts()
	require.NoError(t, err)
	live, ok := liveClf.(*model.NaiveBayes)
	require.True(t, ok)
	require.Equal(t, float64(1), live.DocCounts["sports"])
}

func TestPersistSwapsLivePair(t *testing.T) {
	t.Parallel()

	dir, backupDir := seedArtifacts(t)
	s, err := Open(dir, backupDir, nil)
	require.NoError(t, err)

	vec, copyClf, err := s.TrainingCopy()
	require.NoError(t, err)
	require.NoError(t, copyClf.PartialFit(
		[]map[int]float64{vec.Transform("goal goal")},
		[]string{"sports"},
		[]string{"sports", "tech"},
	))
	require.NoError(t, s.Persist(vec, copyClf))

	_, liveClf, err := s.Artifacts()
	require.NoError(t, err)
	live := liveClf.(*model.NaiveBayes)
	require.Equal(t, float64(2), live.DocCounts["sports"])

	// Reopening reads the persisted state back.
	reopened, err := Open(dir, backupDir, nil)
	require.NoError(t, err)
	_, clf, err := reopened.Artifacts()
	require.NoError(t, err)
	require.Equal(t, float64(2), clf.(*model.NaiveBayes).DocCounts["sports"])
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()

	dir, backupDir := seedArtifacts(t)
	s, err := Open(dir, backupDir, nil)
	require.NoError(t, err)

	backupID, err := s.Backup()
	require.NoError(t, err)
	require.NotEmpty(t, backupID)

	// Corrupt both artifact files, then restore.
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorizerFile), []byte("garbage"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, modelFile), []byte("garbage"), 0o600))

	require.NoError(t, s.Restore(backupID))

	vec, clf, err := s.Artifacts()
	require.NoError(t, err)
	label, err := clf.Predict(vec.Transform("goroutine channel"))
	require.NoError(t, err)
	require.Equal(t, "tech", label)
}

func TestRestoreUnknownBackupFails(t *testing.T) {
	t.Parallel()

	dir, backupDir := seedArtifacts(t)
	s, err := Open(dir, backupDir, nil)
	require.NoError(t, err)

	require.Error(t, s.Restore("20200101_000000.000000000"))
}
