package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed documents.
// It is derived deterministically from the document path.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
// Identical input always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Step is one named stage of the document pipeline.
type Step string

const (
	// StepConvert renders a raw document into textual output formats.
	StepConvert Step = "conversion"
	// StepValidate checks a rendered document against its raw source.
	StepValidate Step = "validation"
	// StepAnalyze runs an analysis prompt over a converted document.
	StepAnalyze Step = "analysis"
	// StepEmbed generates an embedding vector for a converted document.
	StepEmbed Step = "embedding"
)

// StepOrder lists the pipeline stages in execution order.
var StepOrder = []Step{StepConvert, StepValidate, StepAnalyze, StepEmbed}

// Index returns the position of the step in the pipeline order,
// or -1 for an unknown step.
func (s Step) Index() int {
	for i, step := range StepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether the step is one of the known pipeline stages.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// StepKey identifies a completion entry in document metadata.
// The analysis step may be qualified by a topic, producing an independent
// completion entry per topic. Using a composite type instead of string
// concatenation keeps topics from colliding with step names.
type StepKey struct {
	Step  Step
	Topic string
}

// Key returns the StepKey for an unqualified step.
func Key(step Step) StepKey {
	return StepKey{Step: step}
}

// TopicKey returns the StepKey for a topic-qualified step.
func TopicKey(step Step, topic string) StepKey {
	return StepKey{Step: step, Topic: topic}
}

// ID renders the key as it is persisted in sidecar metadata,
// e.g. "analysis" or "analysis:finance".
func (k StepKey) ID() string {
	if k.Topic == "" {
		return string(k.Step)
	}
	return string(k.Step) + ":" + k.Topic
}

// Failure records one failed step for one document during a pipeline run.
type Failure struct {
	Step     Step
	Document string
	Err      error
}

func (f Failure) String() string {
	return string(f.Step) + " " + f.Document + ": " + f.Err.Error()
}

// DocumentVector is one entry in the vector index: the embedding of a
// converted document artifact together with its provenance.
type DocumentVector struct {
	Path        string    // converted artifact path the vector was computed from
	Fingerprint string    // content fingerprint of the artifact at embedding time
	Model       string    // embedding model identifier
	Vector      []float32 // embedding, normalized to unit length
	IndexedAt   time.Time
}

// Id returns the deterministic index ID for the entry, derived from its path.
func (d *DocumentVector) Id() ID {
	return IDFromContent(d.Path)
}

// VectorMatch is a similarity search hit over the vector index.
type VectorMatch struct {
	Entry *DocumentVector
	Score float32
}
