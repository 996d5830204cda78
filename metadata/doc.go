// Package metadata implements the per-document sidecar store used for
// pipeline memoization.
//
// Every source document gets a companion JSON file at <doc>.metadata.json
// recording its content fingerprint, byte size, and per-step completion
// state. The fingerprint anchors all derived state: any byte-level change to
// the source invalidates every recorded step, so stale artifacts are never
// silently reused.
//
// The store is deliberately last-writer-wins. Sidecars are only ever touched
// by the task that owns the document within one run; across independent runs
// there is no coordination beyond the atomic temp-file-then-rename write.
package metadata
