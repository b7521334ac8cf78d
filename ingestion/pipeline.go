package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
)

// policyFileExtensions lists the file types IngestDirectory picks up.
var policyFileExtensions = []string{".txt", ".md"}

// Pipeline loads policy documents into the corpus store.
// Directory ingestion reads and parses files concurrently on a worker pool.
type Pipeline struct {
	corpus          storage.CorpusRepository
	pool            *ants.Pool
	defaultCategory core.Category
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent file parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
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

// WithDefaultCategory sets the category given to files whose front matter names none.
func WithDefaultCategory(category core.Category) Option {
	return func(p *Pipeline) error {
		if category != "" && !category.Valid() {
			return fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
		}
		p.defaultCategory = category
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

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(corpus storage.CorpusRepository, opts ...Option) (*Pipeline, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		corpus: corpus,
		pool:   pool,
		logger: slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// DocumentID derives the stable identifier of a policy from its category and number.
// Re-ingesting a policy therefore replaces the stored copy instead of duplicating it.
func DocumentID(category core.Category, policyNumber string) string {
	name := "urn:attestor:policy:" + string(category) + ":" + strings.TrimSpace(policyNumber)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Ingest validates and stores documents. Documents without an ID are
// assigned one with DocumentID. Nothing is stored if any document is invalid.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.PolicyDocument) ([]*core.PolicyDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	var errs []error
	for i, doc := range docs {
		if err := core.ValidatePolicyDocument(doc); err != nil {
			errs = append(errs, fmt.Errorf("document %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = DocumentID(doc.Category, doc.PolicyNumber)
		}
	}

	added, err := p.corpus.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("documents stored", "count", len(added))
	return added, nil
}

// SkippedFile records a file IngestDirectory could not turn into a document.
type SkippedFile struct {
	Path string
	Err  error
}

// DirectoryReport summarizes one IngestDirectory run.
type DirectoryReport struct {
	Added   []*core.PolicyDocument
	Skipped []SkippedFile
}

type parsedFile struct {
	path string
	doc  *core.PolicyDocument
	err  error
}

// IngestDirectory parses every policy file under dir and stores the valid ones.
// Files that cannot be read, parsed or validated are logged and reported as
// skipped; they never fail the run.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) (*DirectoryReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(policyFileExtensions, strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]parsedFile, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		if ctx.Err() != nil {
			results[i] = parsedFile{path: path, err: ctx.Err()}
			continue
		}
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.parseFile(ctx, path)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = parsedFile{path: path, err: submitErr}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &DirectoryReport{}
	var docs []*core.PolicyDocument
	for _, r := range results {
		if r.err != nil {
			p.logger.Warn("skipping policy file", "path", r.path, "err", r.err)
			report.Skipped = append(report.Skipped, SkippedFile{Path: r.path, Err: r.err})
			continue
		}
		docs = append(docs, r.doc)
	}

	if len(docs) > 0 {
		report.Added, err = p.Ingest(ctx, docs...)
		if err != nil {
			return nil, err
		}
	}

	p.logger.Info("directory ingested", "dir", dir, "added", len(report.Added), "skipped", len(report.Skipped))
	return report, nil
}

func (p *Pipeline) parseFile(ctx context.Context, path string) parsedFile {
	if err := ctx.Err(); err != nil {
		return parsedFile{path: path, err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{path: path, err: err}
	}
	doc, err := ParsePolicyFile(path, data, p.defaultCategory)
	if err != nil {
		return parsedFile{path: path, err: err}
	}
	if err := core.ValidatePolicyDocument(doc); err != nil {
		return parsedFile{path: path, err: err}
	}
	return parsedFile{path: path, doc: doc}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
