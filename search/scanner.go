package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QuestionSearcher answers a single question.
type QuestionSearcher interface {
	Search(ctx context.Context, question string) *core.SearchResult
}

// errEvaluationPanicked marks a document slot whose evaluation panicked.
var errEvaluationPanicked = errors.New("document evaluation panicked")

// Scanner searches the routed slice of the corpus for the first document that
// answers a question.
//
// Candidate documents are split into batches and every batch is evaluated
// concurrently. Results are resolved in candidate order, so the reported
// match is always the earliest qualifying document no matter which call
// finishes first. Once a match is chosen the remaining evaluations are
// cancelled and their outcomes ignored. When nothing matches and some document
// could not be evaluated because the inference service kept failing, the
// question is left under review rather than reported as not met.
//
// Batches run on a shared worker pool capped at DefaultPoolSize (128) batches
// unless WithPoolSize says otherwise. Submitting to a full pool blocks until a
// batch finishes, so raise the cap for very large corpora or many concurrent
// questions.
type Scanner struct {
	corpus    storage.CorpusReader
	router    CategorySelector
	matcher   DocumentEvaluator
	pool      *ants.Pool
	batchSize int
	monitor   SearchMonitor
	metrics   *Metrics
	logger    *slog.Logger
}

var _ QuestionSearcher = (*Scanner)(nil)

// slot holds the outcome of one candidate document. err stops resolution;
// incomplete only marks a negative verdict as unreliable.
type slot struct {
	done       chan struct{}
	verdict    core.MatchVerdict
	incomplete error
	err        error
}

// NewScanner creates a new scanner.
// Call Close to release its worker pool.
func NewScanner(corpus storage.CorpusReader, router CategorySelector, matcher DocumentEvaluator, opts ...Option) (*Scanner, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	return newScanner(corpus, router, matcher, s)
}

func newScanner(corpus storage.CorpusReader, router CategorySelector, matcher DocumentEvaluator, s *settings) (*Scanner, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if router == nil {
		return nil, ErrRouterRequired
	}
	if matcher == nil {
		return nil, ErrMatcherRequired
	}

	logger := s.logger.With("component", "scanner")
	pool, err := ants.NewPool(s.poolSize, ants.WithPanicHandler(func(p any) {
		logger.Error("scanner task panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create scanner pool: %w", err)
	}

	return &Scanner{
		corpus:    corpus,
		router:    router,
		matcher:   matcher,
		pool:      pool,
		batchSize: s.batchSize,
		monitor:   s.monitor,
		metrics:   s.metrics,
		logger:    logger,
	}, nil
}

// Close releases the worker pool.
func (s *Scanner) Close() {
	s.pool.Release()
}

// Search answers question using the scanner's configured monitor.
func (s *Scanner) Search(ctx context.Context, question string) *core.SearchResult {
	return s.SearchWithMonitor(ctx, question, s.monitor)
}

// SearchWithMonitor answers question, reporting each stage to monitor.
// It never returns nil. Failures that prevent a meaningful search, including
// panics, produce an under-review result.
func (s *Scanner) SearchWithMonitor(ctx context.Context, question string, monitor SearchMonitor) (result *core.SearchResult) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "search.question")
	defer span.End()

	monitor.Start(question)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search panicked", "question", question, "panic", r)
			result = core.UnderReview()
		}
		span.SetAttributes(attribute.String("attestor.status", string(result.Status)))
		s.metrics.searchFinished(result.Status, time.Since(start))
		monitor.Finish(question, result)
	}()

	categories := s.router.SelectCategories(ctx, question)
	span.SetAttributes(categoryAttr(categories))
	monitor.AfterRouting(categories)

	docs, err := s.corpus.ListByCategories(ctx, categories...)
	if err != nil {
		s.logger.Warn("error listing candidate documents", "categories", categories, "err", err)
		return core.UnderReview()
	}

	candidates := make([]*core.PolicyDocument, 0, len(docs))
	for _, doc := range docs {
		if doc != nil && len(doc.Content) > 0 {
			candidates = append(candidates, doc)
		}
	}
	monitor.AfterCandidates(candidates)
	span.AddEvent("candidates", trace.WithAttributes(attribute.Int("attestor.candidates", len(candidates))))

	if len(candidates) == 0 {
		s.logger.Debug("no candidate documents", "categories", categories)
		return core.UnderReview()
	}

	return s.scan(ctx, question, candidates, monitor)
}

// scan evaluates candidates concurrently and resolves them in order.
func (s *Scanner) scan(ctx context.Context, question string, candidates []*core.PolicyDocument, monitor SearchMonitor) *core.SearchResult {
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]*slot, len(candidates))
	for i := range slots {
		slots[i] = &slot{done: make(chan struct{})}
	}

	for start := 0; start < len(candidates); start += s.batchSize {
		end := min(start+s.batchSize, len(candidates))
		batch := slots[start:end]
		docs := candidates[start:end]

		err := s.pool.Submit(func() {
			s.runBatch(scanCtx, question, docs, batch)
		})
		if err != nil {
			s.logger.Warn("error submitting batch", "start", start, "err", err)
			for _, sl := range batch {
				sl.err = err
				close(sl.done)
			}
		}
	}

	incomplete := 0
	for i, sl := range slots {
		select {
		case <-sl.done:
		case <-ctx.Done():
			s.logger.Debug("search cancelled before resolution", "err", ctx.Err())
			return core.UnderReview()
		}

		if sl.err != nil {
			s.logger.Warn("document could not be evaluated", "policy", candidates[i].DisplayName(), "err", sl.err)
			return core.UnderReview()
		}
		if sl.incomplete != nil {
			incomplete++
		}

		monitor.DocumentEvaluated(candidates[i], sl.verdict)
		if sl.verdict.Qualifies() {
			cancel()
			s.logger.Debug("match found", "policy", candidates[i].DisplayName(), "page", sl.verdict.PageLabel)
			return core.Met(candidates[i], sl.verdict)
		}
	}

	// Cancelled evaluations are not an exhausted corpus
	if ctx.Err() != nil {
		return core.UnderReview()
	}
	if incomplete > 0 {
		s.logger.Warn("documents could not be evaluated, leaving question under review",
			"incomplete", incomplete, "candidates", len(candidates))
		return core.UnderReview()
	}
	return core.NotMet()
}

// runBatch evaluates every document of a batch in parallel. Each document
// writes only to its own slot and closes its done channel exactly once.
func (s *Scanner) runBatch(ctx context.Context, question string, docs []*core.PolicyDocument, batch []*slot) {
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(doc *core.PolicyDocument, sl *slot) {
			defer wg.Done()
			defer close(sl.done)
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("document evaluation panicked", "policy", doc.DisplayName(), "panic", r)
					sl.err = errEvaluationPanicked
				}
			}()
			sl.verdict, sl.incomplete = s.matcher.Evaluate(ctx, question, doc)
		}(doc, batch[i])
	}
	wg.Wait()
}
