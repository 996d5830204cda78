package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentVectorRoundTrip(t *testing.T) {
	entry := &core.DocumentVector{
		Path:        "docs/report.pdf.converted.md",
		Fingerprint: "abcdef0123456789",
		Model:       "embeddinggemma",
		Vector:      []float32{0.25, -0.5, 0.125},
		IndexedAt:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	data := MarshalDocumentVector(entry)
	decoded, err := UnmarshalDocumentVector(data)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestDocumentVectorEmptyVector(t *testing.T) {
	entry := &core.DocumentVector{
		Path:      "a.pdf.converted.md",
		IndexedAt: time.UnixMicro(0).UTC(),
	}

	decoded, err := UnmarshalDocumentVector(MarshalDocumentVector(entry))
	require.NoError(t, err)
	assert.Equal(t, entry.Path, decoded.Path)
	assert.Empty(t, decoded.Vector)
}

func TestUnmarshalDocumentVectorTruncated(t *testing.T) {
	entry := &core.DocumentVector{
		Path:   "a.pdf.converted.md",
		Vector: []float32{1, 2, 3},
	}
	data := MarshalDocumentVector(entry)

	_, err := UnmarshalDocumentVector(data[:len(data)-2])
	assert.Error(t, err)
}

func TestIDRoundTrip(t *testing.T) {
	id := core.IDFromContent("docs/report.pdf")
	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}
