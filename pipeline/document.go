package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/convert"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/metadata"
	"github.com/poiesic/docflow/prompt"
)

// processDocument runs the convert, validate, and analyze stages for one
// document and returns its local failures. The sidecar record is touched only
// by this task, so no cross-worker synchronization is needed here.
func (r *run) processDocument(ctx context.Context, path string) []core.Failure {
	p := r.p
	logger := p.logger.With("document", path)

	digest, size, err := metadata.Fingerprint(path)
	if err != nil {
		return []core.Failure{{Step: core.StepConvert, Document: path, Err: err}}
	}
	rec, err := metadata.Load(path)
	if err != nil {
		return []core.Failure{{Step: core.StepConvert, Document: path, Err: err}}
	}
	if rec.Refresh(digest, size) {
		logger.Info("fingerprint changed, derived state invalidated")
	}

	var failures []core.Failure
	fail := func(step core.Step, err error) {
		failures = append(failures, core.Failure{Step: step, Document: path, Err: err})
	}

	// CONVERT
	if p.shouldRun(core.StepConvert) {
		switch {
		case r.stepDone(rec, core.Key(core.StepConvert)):
			logger.Debug("conversion up to date, skipping")
		case p.dryRun:
			logger.Info("dry-run: would convert", "formats", formatNames(p.formats))
		default:
			if err := r.convertDocument(ctx, path, rec); err != nil {
				logger.Error("conversion failed", "err", err)
				fail(core.StepConvert, err)
			}
		}
	}

	if len(failures) > 0 && p.failFast {
		return failures
	}

	convertedPath := convert.ConvertedPath(path, p.primaryFormat())
	convertedExists := fileExists(convertedPath)

	// VALIDATE
	if convertedExists && p.shouldRun(core.StepValidate) {
		switch {
		case r.stepDone(rec, core.Key(core.StepValidate)):
			logger.Debug("validation up to date, skipping")
		case p.dryRun:
			logger.Info("dry-run: would validate", "artifact", convertedPath)
		default:
			if err := r.validateDocument(ctx, path, convertedPath, rec); err != nil {
				logger.Error("validation failed", "err", err)
				fail(core.StepValidate, err)
			}
		}
	}

	// Any local failure suppresses analysis for this document, in both
	// disciplines. A rendering that failed validation must not be analyzed.
	if len(failures) > 0 {
		logger.Warn("skipping analysis after earlier failure")
		return failures
	}

	// ANALYZE, once per discovered topic, failures recorded independently
	if convertedExists && p.shouldRun(core.StepAnalyze) {
		topics := prompt.DiscoverTopics(filepath.Dir(path), p.analysisFallback)
		for _, topic := range topics {
			switch {
			case r.stepDone(rec, core.TopicKey(core.StepAnalyze, topic.Name)):
				logger.Debug("analysis up to date, skipping", "topic", topic.Name)
			case p.dryRun:
				logger.Info("dry-run: would analyze", "topic", topic.Name, "prompt", topic.Template)
			default:
				if err := r.analyzeDocument(ctx, path, convertedPath, rec, topic); err != nil {
					logger.Error("analysis failed", "topic", topic.Name, "err", err)
					fail(core.StepAnalyze, err)
				}
			}
		}
	}

	return failures
}

// stepDone consults the memoization state, which the force flag bypasses.
// Callers must have refreshed the record's fingerprint first.
func (r *run) stepDone(rec *metadata.Record, key core.StepKey) bool {
	return !r.p.force && rec.IsStepDone(key)
}

func (r *run) convertDocument(ctx context.Context, path string, rec *metadata.Record) error {
	p := r.p

	artifacts, err := p.converter.Convert(ctx, path, p.formats)
	if err != nil {
		return err
	}

	outputs := make([]string, 0, len(artifacts))
	for _, artifactPath := range artifacts {
		outputs = append(outputs, filepath.Base(artifactPath))
	}
	sort.Strings(outputs)

	rec.MarkStep(core.Key(core.StepConvert), true, outputs, map[string]any{
		"formats":   formatNames(p.formats),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return metadata.Save(path, rec)
}

func (r *run) validateDocument(ctx context.Context, path, convertedPath string, rec *metadata.Record) error {
	p := r.p

	promptPath := prompt.ResolveValidation(path, p.validateFallback)
	tmpl, err := prompt.Load(promptPath)
	if err != nil {
		return err
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rendered, err := os.ReadFile(convertedPath)
	if err != nil {
		return err
	}

	raw := ai.RawDocument{
		Name: filepath.Base(path),
		MIME: mimeForPath(path),
		Data: rawData,
	}
	verdict, err := p.provider.Verifier().VerifyRendering(ctx, raw, string(rendered), string(p.primaryFormat()), tmpl)
	if err != nil {
		return err
	}

	// The flag records the verdict: done only on a positive match. The
	// provenance entry is written either way so a failed verdict is
	// inspectable from the sidecar.
	rec.MarkStep(core.Key(core.StepValidate), verdict.Match, []string{}, map[string]any{
		"prompt":    promptPath,
		"model":     tmpl.Model,
		"artifact":  filepath.Base(convertedPath),
		"verdict":   verdict.Fields,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err := metadata.Save(path, rec); err != nil {
		return err
	}

	if !verdict.Match {
		return &VerdictError{Path: path, Fields: verdict.Fields}
	}
	return nil
}

func (r *run) analyzeDocument(ctx context.Context, path, convertedPath string, rec *metadata.Record, topic prompt.Topic) error {
	p := r.p

	tmpl, err := prompt.Load(topic.Template)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(convertedPath)
	if err != nil {
		return err
	}

	response, err := p.provider.Analyzer().Analyze(ctx, tmpl, string(text))
	if err != nil {
		return err
	}

	outPath := convert.AnalysisPath(convertedPath, topic.Name)
	if err := os.WriteFile(outPath, structureAnalysis(response), 0o644); err != nil {
		return err
	}

	rec.MarkStep(core.TopicKey(core.StepAnalyze, topic.Name), true, []string{filepath.Base(outPath)}, map[string]any{
		"prompt":    topic.Template,
		"model":     tmpl.Model,
		"artifact":  filepath.Base(convertedPath),
		"topic":     topic.Name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	return metadata.Save(path, rec)
}

// structureAnalysis normalizes an analysis response before it is written out.
// A JSON response (possibly fenced) is re-indented; anything else is stored
// as plain text.
func structureAnalysis(response string) []byte {
	text := stripFences(response)

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(parsed); err == nil {
			return buf.Bytes()
		}
	}
	return []byte(response)
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func formatNames(formats []core.OutputFormat) []string {
	names := make([]string, len(formats))
	for i, format := range formats {
		names[i] = string(format)
	}
	return names
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// mimeForPath resolves the content type sent with raw bytes to the
// verification service.
func mimeForPath(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
