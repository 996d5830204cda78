package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/convert"
	"github.com/poiesic/docflow/core"
	"github.com/poiesic/docflow/prompt"
	"github.com/poiesic/docflow/storage"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// Pipeline orchestrates the processing of a document tree through the
// convert, validate, analyze, and embed stages. Documents are processed
// concurrently on a bounded worker pool; the embedding stage runs once,
// globally, after all documents finish.
type Pipeline struct {
	converter convert.Converter
	provider  ai.Provider
	index     storage.VectorIndex
	pool      *ants.Pool

	failFast   bool
	resumeFrom core.Step
	skip       map[core.Step]bool
	dryRun     bool
	force      bool

	formats          []core.OutputFormat
	validateFallback string
	analysisFallback string
	embedModel       string

	maxAttempts int
	baseDelay   time.Duration

	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the worker pool size for concurrent document processing.
// Default is 1.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if err := core.ValidateWorkers(size); err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithFailFast selects the fail-fast discipline: the first failure halts
// submission of further documents and the run reports exactly that failure.
// Default is keep-going, which processes every document and aggregates
// failures into one report.
func WithFailFast(failFast bool) Option {
	return func(p *Pipeline) error {
		p.failFast = failFast
		return nil
	}
}

// WithResumeFrom skips every stage before the given step for all documents.
func WithResumeFrom(step core.Step) Option {
	return func(p *Pipeline) error {
		if err := core.ValidateStep(step); err != nil {
			return err
		}
		p.resumeFrom = step
		return nil
	}
}

// WithSkip omits the given steps, independent of the resume point.
func WithSkip(steps ...core.Step) Option {
	return func(p *Pipeline) error {
		for _, step := range steps {
			if err := core.ValidateStep(step); err != nil {
				return err
			}
			p.skip[step] = true
		}
		return nil
	}
}

// WithDryRun substitutes every external call and filesystem mutation with a
// log statement. Gating decisions are identical to a real run.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) error {
		p.dryRun = dryRun
		return nil
	}
}

// WithForce bypasses step memoization for this invocation. Sidecar records
// are still updated on success.
func WithForce(force bool) Option {
	return func(p *Pipeline) error {
		p.force = force
		return nil
	}
}

// WithFormats sets the conversion output formats. The first format is the
// primary one used by validation, analysis, and embedding.
// Default is markdown.
func WithFormats(formats ...core.OutputFormat) Option {
	return func(p *Pipeline) error {
		if len(formats) == 0 {
			return nil
		}
		p.formats = formats
		return nil
	}
}

// WithValidatePrompt sets the fallback validation prompt path used when a
// document has no document- or directory-level prompt.
func WithValidatePrompt(path string) Option {
	return func(p *Pipeline) error {
		p.validateFallback = path
		return nil
	}
}

// WithAnalysisPrompt sets the fallback analysis prompt path.
func WithAnalysisPrompt(path string) Option {
	return func(p *Pipeline) error {
		p.analysisFallback = path
		return nil
	}
}

// WithIndex attaches a vector index; embeddings are upserted into it as they
// are produced. Without an index, embedding artifacts are still written to
// disk but nothing is searchable.
func WithIndex(index storage.VectorIndex) Option {
	return func(p *Pipeline) error {
		p.index = index
		return nil
	}
}

// WithEmbeddingModel records the embedding model identifier in sidecar
// provenance and index entries.
func WithEmbeddingModel(model string) Option {
	return func(p *Pipeline) error {
		p.embedModel = model
		return nil
	}
}

// WithRetry overrides the embedding retry policy.
// Default is 3 attempts with a 2s base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithProgressWriter sets where progress lines are written.
// Default is to discard them.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w == nil {
			w = io.Discard
		}
		p.progressWriter = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new document pipeline.
func NewPipeline(converter convert.Converter, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if converter == nil {
		return nil, ErrConverterRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		converter:        converter,
		provider:         provider,
		pool:             pool,
		resumeFrom:       core.StepConvert,
		skip:             make(map[core.Step]bool),
		formats:          []core.OutputFormat{core.FormatMarkdown},
		validateFallback: prompt.DefaultValidatePrompt,
		analysisFallback: prompt.DefaultAnalysisPrompt,
		maxAttempts:      defaultMaxAttempts,
		baseDelay:        defaultBaseDelay,
		progressWriter:   io.Discard,
		logger:           slog.Default().With("component", "pipeline"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// shouldRun reports whether a stage is active under the resume and skip
// configuration.
func (p *Pipeline) shouldRun(step core.Step) bool {
	return step.Index() >= p.resumeFrom.Index() && !p.skip[step]
}

// primaryFormat is the format validation, analysis, and embedding operate on.
func (p *Pipeline) primaryFormat() core.OutputFormat {
	return p.formats[0]
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// run carries the mutable state of one pipeline invocation. The failure list
// and halt flag are the only state shared across workers, guarded by one lock.
type run struct {
	p       *Pipeline
	tracker *ProgressTracker

	mu       sync.Mutex
	failures []core.Failure
	halted   bool
}

// record merges a document's local failures into the shared list. Under
// fail-fast only the first failure is kept; late results never mask it.
func (r *run) record(failures ...core.Failure) {
	if len(failures) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.p.failFast {
		if !r.halted {
			r.failures = append(r.failures, failures[0])
		}
		r.halted = true
		return
	}
	r.failures = append(r.failures, failures...)
	r.halted = true
}

func (r *run) hasFailures() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.halted
}

func (r *run) snapshot() []core.Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Run processes every eligible document under root and then runs the global
// embedding phase. It returns nil on a clean run, or a *Report listing every
// recorded failure. Fail-fast runs stop submitting documents after the first
// failure and skip the embedding phase entirely.
func (p *Pipeline) Run(ctx context.Context, root string) error {
	docs, err := Discover(root)
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}
	p.logger.Info("discovered documents", "root", root, "count", len(docs))

	r := &run{
		p:       p,
		tracker: NewProgressTracker(p.progressWriter, len(docs), 1),
	}
	r.tracker.Start()

	var wg sync.WaitGroup
	for _, doc := range docs {
		if p.failFast && r.hasFailures() {
			break
		}

		doc := doc
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			r.record(r.processDocument(ctx, doc)...)
			r.tracker.Increment(1, doc)
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit %s: %w", doc, submitErr)
		}
	}
	wg.Wait()
	r.tracker.Finish()

	if p.shouldRun(core.StepEmbed) && !(p.failFast && r.hasFailures()) {
		r.embedAll(ctx, root)
	}

	if failures := r.snapshot(); len(failures) > 0 {
		return &Report{Failures: failures}
	}
	return nil
}
