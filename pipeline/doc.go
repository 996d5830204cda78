// Package pipeline orchestrates the processing of a document tree.
//
// The Pipeline type sequences the convert, validate, analyze, and embed
// stages per document, including:
//   - Fingerprint-based step memoization via sidecar metadata
//   - Resumable and skippable stage sequencing
//   - Bounded concurrent execution under fail-fast or keep-going disciplines
//   - Bounded retry with exponential backoff for the embedding stage
//
// Documents are processed concurrently on a worker pool. The embedding stage
// runs once, globally, after all documents finish. Failures are aggregated
// into a single Report returned from Run.
package pipeline
