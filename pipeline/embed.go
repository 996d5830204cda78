package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/convert"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/metadata"
)

// embeddingArtifact is the on-disk form of a produced embedding.
type embeddingArtifact struct {
	Model      string    `json:"model,omitempty"`
	Dimensions int       `json:"dimensions"`
	Vector     []float32 `json:"vector"`
}

// embedAll is the global embedding phase: it runs once, after all documents
// are processed, over every successfully converted artifact in the tree.
// Failures are recorded in the shared list; under fail-fast the first one
// stops the phase.
func (r *run) embedAll(ctx context.Context, root string) {
	p := r.p

	artifacts, err := DiscoverConverted(root, p.formats)
	if err != nil {
		r.record(core.Failure{Step: core.StepEmbed, Document: root, Err: err})
		return
	}
	p.logger.Info("embedding converted artifacts", "count", len(artifacts))

	embedder := p.provider.Embedder()
	for _, artifact := range artifacts {
		if p.failFast && r.hasFailures() {
			return
		}
		if err := r.embedArtifact(ctx, embedder, artifact); err != nil {
			source := convert.SourcePath(artifact)
			p.logger.Error("embedding failed, artifact skipped", "artifact", artifact, "err", err)
			r.record(core.Failure{Step: core.StepEmbed, Document: source, Err: err})
			if p.failFast {
				return
			}
		}
	}
}

func (r *run) embedArtifact(ctx context.Context, embedder ai.Embedder, artifact string) error {
	p := r.p
	source := convert.SourcePath(artifact)
	logger := p.logger.With("artifact", artifact)

	// The embed phase may be entered directly via resume-from, so the
	// fingerprint check happens here as well before any flag is trusted.
	digest, size, err := metadata.Fingerprint(source)
	if err != nil {
		return err
	}
	rec, err := metadata.Load(source)
	if err != nil {
		return err
	}
	rec.Refresh(digest, size)

	if r.stepDone(rec, core.Key(core.StepEmbed)) {
		logger.Debug("embedding up to date, skipping")
		return nil
	}
	if p.dryRun {
		logger.Info("dry-run: would embed")
		return nil
	}

	text, err := os.ReadFile(artifact)
	if err != nil {
		return err
	}

	var vector []float32
	err = RetryWithBackoff(ctx, func() error {
		v, embedErr := embedder.EmbedText(ctx, string(text))
		if embedErr != nil {
			return embedErr
		}
		vector = v
		return nil
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		// No artifact is written and the step stays incomplete, so a
		// later run retries cleanly.
		return err
	}

	// Artifact first, flag second. A crash in between leaves an orphaned
	// artifact that the idempotent naming overwrites on the next run.
	embPath := convert.EmbeddingPath(artifact)
	payload, err := json.Marshal(embeddingArtifact{
		Model:      p.embedModel,
		Dimensions: len(vector),
		Vector:     vector,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(embPath, append(payload, '\n'), 0o644); err != nil {
		return err
	}

	if p.index != nil {
		artifactDigest, _, err := metadata.Fingerprint(artifact)
		if err != nil {
			return err
		}
		entry := &core.DocumentVector{
			Path:        artifact,
			Fingerprint: artifactDigest,
			Model:       p.embedModel,
			Vector:      vector,
		}
		if err := p.index.Upsert(ctx, entry); err != nil {
			return err
		}
	}

	rec.MarkStep(core.Key(core.StepEmbed), true, []string{filepath.Base(embPath)}, map[string]any{
		"model":      p.embedModel,
		"artifact":   filepath.Base(artifact),
		"dimensions": len(vector),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	return metadata.Save(source, rec)
}
