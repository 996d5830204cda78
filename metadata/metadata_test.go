package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.pdf", "document content")

	digest1, size, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Len(t, digest1, 64) // 32-byte digest, hex encoded
	assert.Equal(t, int64(len("document content")), size)

	// Deterministic
	digest2, _, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, digest1, digest2)

	// One-byte change produces a different digest
	require.NoError(t, os.WriteFile(path, []byte("document contenu"), 0o644))
	digest3, _, err := Fingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, digest1, digest3)
}

func TestFingerprintMissingFile(t *testing.T) {
	_, _, err := Fingerprint(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}

func TestLoadMissingSidecar(t *testing.T) {
	rec, err := Load(filepath.Join(t.TempDir(), "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, &Record{}, rec)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "a.pdf", "content")

	rec := &Record{Fingerprint: "abc", Size: 7}
	rec.MarkStep(core.Key(core.StepConvert), true, []string{"a.pdf.converted.md"}, map[string]any{"formats": []string{"markdown"}})
	require.NoError(t, Save(path, rec))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.Fingerprint)
	assert.Equal(t, int64(7), loaded.Size)
	assert.True(t, loaded.IsStepDone(core.Key(core.StepConvert)))
	assert.Equal(t, []string{"a.pdf.converted.md"}, loaded.StepOutputs(core.Key(core.StepConvert)))

	// Sidecar lives next to the document
	assert.FileExists(t, path+Suffix)
}

func TestRefresh(t *testing.T) {
	rec := &Record{Fingerprint: "old", Size: 10}
	rec.MarkStep(core.Key(core.StepConvert), true, nil, nil)
	rec.MarkStep(core.TopicKey(core.StepAnalyze, "finance"), true, nil, nil)

	t.Run("matching fingerprint keeps state", func(t *testing.T) {
		changed := rec.Refresh("old", 10)
		assert.False(t, changed)
		assert.True(t, rec.IsStepDone(core.Key(core.StepConvert)))
	})

	t.Run("mismatch discards all derived state", func(t *testing.T) {
		changed := rec.Refresh("new", 11)
		assert.True(t, changed)
		assert.Equal(t, "new", rec.Fingerprint)
		assert.Equal(t, int64(11), rec.Size)
		assert.False(t, rec.IsStepDone(core.Key(core.StepConvert)))
		assert.False(t, rec.IsStepDone(core.TopicKey(core.StepAnalyze, "finance")))
	})
}

func TestMarkStepMergesPerKey(t *testing.T) {
	rec := &Record{}
	rec.MarkStep(core.Key(core.StepConvert), true, []string{"out.md"}, map[string]any{"a": 1})
	rec.MarkStep(core.Key(core.StepValidate), false, []string{}, map[string]any{"verdict": false})

	// The convert entry is untouched by the validate write
	assert.True(t, rec.IsStepDone(core.Key(core.StepConvert)))
	assert.Equal(t, []string{"out.md"}, rec.StepOutputs(core.Key(core.StepConvert)))
	assert.False(t, rec.IsStepDone(core.Key(core.StepValidate)))
	assert.NotNil(t, rec.StepInput(core.Key(core.StepValidate)))

	// Unknown keys default to not done
	assert.False(t, rec.IsStepDone(core.Key(core.StepEmbed)))
}

func TestIsSidecar(t *testing.T) {
	assert.True(t, IsSidecar("a.pdf.metadata.json"))
	assert.False(t, IsSidecar("a.pdf"))
	assert.False(t, IsSidecar("a.pdf.analysis.json"))
}
