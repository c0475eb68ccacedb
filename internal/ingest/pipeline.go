package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sha1n/docindex/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files processed concurrently when Config.Workers is unset.
const DefaultWorkers = 4

// Config is the explicit configuration of a pipeline run.
type Config struct {
	// Root is the directory to scan.
	Root string

	// Workers bounds the number of files processed concurrently.
	Workers int

	// DryRun collects the batch without submitting it to the index.
	DryRun bool
}

// Batch collects the documents assembled during one run. It is safe for concurrent use.
type Batch struct {
	mu   sync.Mutex
	docs []domain.SearchDocument
}

// Add appends a document to the batch.
func (b *Batch) Add(doc domain.SearchDocument) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = append(b.docs, doc)
}

// Len returns the number of collected documents.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.docs)
}

// Documents returns a copy of the collected documents in no particular order.
func (b *Batch) Documents() []domain.SearchDocument {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs := make([]domain.SearchDocument, len(b.docs))
	copy(docs, b.docs)
	return docs
}

// Report summarizes one pipeline run.
// Observed always equals Dropped plus Assembled.
type Report struct {
	Observed  int
	Dropped   int
	Assembled int
	Indexed   int
	DryRun    bool
	Duration  time.Duration
	Documents []domain.SearchDocument
}

// Pipeline scans a directory tree and submits the extracted documents as one batch.
type Pipeline struct {
	cfg    Config
	walker *Walker
	router *Router
	gate   *Gate
}

// NewPipeline creates a pipeline. A non-positive worker count falls back to DefaultWorkers.
func NewPipeline(cfg Config, router *Router, index Index) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Pipeline{
		cfg:    cfg,
		walker: NewWalker(cfg.Root),
		router: router,
		gate:   NewGate(index, cfg.DryRun),
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run collects the batch and hands it to the submission gate.
// Only a submission failure makes the run fail.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	report := p.Collect()
	report.DryRun = p.cfg.DryRun

	indexed, err := p.gate.Submit(ctx, report.Documents)
	report.Duration = time.Since(start)
	if err != nil {
		return report, fmt.Errorf("failed to submit %d documents: %w", len(report.Documents), err)
	}
	report.Indexed = indexed

	slog.Info("Run complete",
		"root", p.cfg.Root,
		"observed", report.Observed,
		"dropped", report.Dropped,
		"assembled", report.Assembled,
		"indexed", report.Indexed,
		"dry_run", report.DryRun,
		"duration", report.Duration)

	return report, nil
}

// Collect walks the root and processes every file on a bounded worker pool.
// It returns once every dispatched file has been processed.
func (p *Pipeline) Collect() *Report {
	var (
		batch    Batch
		observed atomic.Int64
		dropped  atomic.Int64
	)

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Workers)

	for path := range p.walker.Paths() {
		observed.Add(1)
		// Go blocks while all workers are busy
		g.Go(func() error {
			doc, ok := p.process(path)
			if !ok {
				dropped.Add(1)
				return nil
			}
			slog.Debug("Prepared document", "path", path, "id", doc.ID, "size", doc.Size)
			batch.Add(doc)
			return nil
		})
	}
	_ = g.Wait()

	docs := batch.Documents()
	return &Report{
		Observed:  int(observed.Load()),
		Dropped:   int(dropped.Load()),
		Assembled: len(docs),
		Documents: docs,
	}
}

// process runs one file through metadata, classification, extraction and assembly.
func (p *Pipeline) process(path string) (domain.SearchDocument, bool) {
	candidate, err := NewCandidate(path)
	if err != nil {
		slog.Debug("Dropping file without metadata", "path", path, "error", err)
		return domain.SearchDocument{}, false
	}

	typ := Classify(path)
	if typ == domain.Unsupported {
		slog.Debug("Skipping unsupported file", "path", path)
		return domain.SearchDocument{}, false
	}

	slog.Debug("Extracting file", "path", path, "type", typ.String())
	out := p.router.Extract(path, typ)

	doc, ok := Assemble(candidate, AbsolutePath(path), out)
	if !ok {
		slog.Debug("Dropping file after failed extraction", "path", path)
	}
	return doc, ok
}
