package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/attestor/ai"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
)

// Coordinator runs question searches for a whole submission concurrently.
// A failure in one question never affects the others.
type Coordinator struct {
	searcher QuestionSearcher
	pool     *ants.Pool
	progress io.Writer
	logger   *slog.Logger
	owned    *Scanner
}

// New wires a router, matcher and scanner over corpus and provider into a
// Coordinator. All components share the same options, cache and metrics.
// Call Close to release the worker pools.
func New(corpus storage.CorpusReader, provider ai.AIProvider, opts ...Option) (*Coordinator, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}

	router, err := newRouter(provider.Completer(), s)
	if err != nil {
		return nil, err
	}
	matcher, err := newMatcher(provider.Completer(), s)
	if err != nil {
		return nil, err
	}
	scanner, err := newScanner(corpus, router, matcher, s)
	if err != nil {
		return nil, err
	}

	c, err := newCoordinator(scanner, s)
	if err != nil {
		scanner.Close()
		return nil, err
	}
	c.owned = scanner
	return c, nil
}

// NewCoordinator creates a coordinator around an existing searcher.
// Call Close to release its worker pool.
func NewCoordinator(searcher QuestionSearcher, opts ...Option) (*Coordinator, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	return newCoordinator(searcher, s)
}

func newCoordinator(searcher QuestionSearcher, s *settings) (*Coordinator, error) {
	if searcher == nil {
		return nil, ErrScannerRequired
	}

	logger := s.logger.With("component", "coordinator")
	pool, err := ants.NewPool(s.questionConcurrency, ants.WithPanicHandler(func(p any) {
		logger.Error("question task panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create question pool: %w", err)
	}

	return &Coordinator{
		searcher: searcher,
		pool:     pool,
		progress: s.progress,
		logger:   logger,
	}, nil
}

// Close releases the worker pools.
func (c *Coordinator) Close() {
	c.pool.Release()
	if c.owned != nil {
		c.owned.Close()
	}
}

// SearchAll searches the first limit questions concurrently and returns their
// results keyed by question number. A limit of zero or less, or one larger
// than the list, searches every question. Questions sharing a number keep the
// result of whichever finished last.
func (c *Coordinator) SearchAll(ctx context.Context, questions []core.Question, limit int) map[int]*core.SearchResult {
	if limit <= 0 || limit > len(questions) {
		limit = len(questions)
	}
	selected := questions[:limit]

	var progress *ProgressTracker
	if c.progress != nil {
		progress = NewProgressTracker(c.progress, len(selected), 1)
		progress.Start()
		defer progress.Finish()
	}

	results := make(map[int]*core.SearchResult, len(selected))
	var mu sync.Mutex
	record := func(number int, result *core.SearchResult) {
		mu.Lock()
		results[number] = result
		mu.Unlock()
		if progress != nil {
			progress.Increment(1)
		}
	}

	var wg sync.WaitGroup
	for _, q := range selected {
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			record(q.Number, c.searchOne(ctx, q))
		})
		if err != nil {
			wg.Done()
			c.logger.Warn("error submitting question", "number", q.Number, "err", err)
			record(q.Number, core.UnderReview())
		}
	}
	wg.Wait()

	c.logger.Debug("submission searched", "questions", len(selected))
	return results
}

// searchOne isolates a single question's search from its siblings.
func (c *Coordinator) searchOne(ctx context.Context, q core.Question) (result *core.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("question search panicked", "number", q.Number, "panic", r)
			result = core.UnderReview()
		}
	}()

	if err := core.ValidateQuestion(q); err != nil {
		c.logger.Warn("invalid question", "number", q.Number, "err", err)
		return core.UnderReview()
	}

	result = c.searcher.Search(ctx, q.Text)
	if result == nil {
		return core.UnderReview()
	}
	return result
}
