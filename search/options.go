package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/attestor/cache"
	"github.com/poiesic/attestor/core"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBatchSize is the number of documents grouped into one scanner task.
	DefaultBatchSize = 5

	// DefaultPoolSize bounds the scanner tasks running at once across all questions.
	DefaultPoolSize = 128

	// DefaultQuestionConcurrency bounds the questions searched at once.
	DefaultQuestionConcurrency = 64

	// DefaultMaxPageChars bounds the page text sent in a single prompt, in runes.
	DefaultMaxPageChars = 12000

	// DefaultCallTimeout bounds a single inference call.
	DefaultCallTimeout = 60 * time.Second

	// DefaultRetries is the number of extra attempts after a transport failure.
	DefaultRetries = 1

	// DefaultRetryDelay is the delay before the first retry.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxCategories caps the categories a question is routed to.
	DefaultMaxCategories = 3
)

// VerdictCache stores match verdicts per question and document.
// Implementations must be safe for concurrent use.
type VerdictCache interface {
	Get(ctx context.Context, question, documentID string) (core.MatchVerdict, bool, error)
	Put(ctx context.Context, question, documentID string, verdict core.MatchVerdict) error
}

var _ VerdictCache = (*cache.EvidenceCache)(nil)

// settings holds the knobs shared by the router, matcher, scanner and coordinator.
type settings struct {
	logger              *slog.Logger
	batchSize           int
	poolSize            int
	questionConcurrency int
	maxPageChars        int
	callTimeout         time.Duration
	retries             int
	retryDelay          time.Duration
	maxCategories       int
	cache               VerdictCache
	metrics             *Metrics
	registerer          prometheus.Registerer
	monitor             SearchMonitor
	progress            io.Writer
}

// Option configures the search engine components.
type Option func(*settings) error

func defaultSettings() *settings {
	return &settings{
		logger:              slog.Default(),
		batchSize:           DefaultBatchSize,
		poolSize:            DefaultPoolSize,
		questionConcurrency: DefaultQuestionConcurrency,
		maxPageChars:        DefaultMaxPageChars,
		callTimeout:         DefaultCallTimeout,
		retries:             DefaultRetries,
		retryDelay:          DefaultRetryDelay,
		maxCategories:       DefaultMaxCategories,
		monitor:             &noopMonitor{},
	}
}

// resolveSettings applies opts over the defaults and fills in the
// collaborators that were not supplied.
func resolveSettings(opts []Option) (*settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.cache == nil {
		c, err := cache.New(cache.DefaultConfig())
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	if s.metrics == nil {
		reg := s.registerer
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		m, err := NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		s.metrics = m
	}

	return s, nil
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithBatchSize sets how many documents are grouped into one scanner task.
// Default is 5.
func WithBatchSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidOption, size)
		}
		s.batchSize = size
		return nil
	}
}

// WithPoolSize sets the number of scanner tasks that may run at once.
// Default is 128.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidOption, size)
		}
		s.poolSize = size
		return nil
	}
}

// WithQuestionConcurrency sets the number of questions searched at once.
// Default is 64.
func WithQuestionConcurrency(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return fmt.Errorf("%w: question concurrency must be positive, got %d", ErrInvalidOption, n)
		}
		s.questionConcurrency = n
		return nil
	}
}

// WithMaxPageChars bounds the page text included in a match prompt.
// Default is 12000 runes.
func WithMaxPageChars(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return fmt.Errorf("%w: max page chars must be positive, got %d", ErrInvalidOption, n)
		}
		s.maxPageChars = n
		return nil
	}
}

// WithCallTimeout bounds each inference call. A timed out call counts as
// "not found" for the page it was evaluating.
// Default is 60s.
func WithCallTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d <= 0 {
			return fmt.Errorf("%w: call timeout must be positive, got %s", ErrInvalidOption, d)
		}
		s.callTimeout = d
		return nil
	}
}

// WithRetry sets how many times a failed inference call is retried and the
// initial backoff. Only transport failures are retried.
// Default is one retry after 500ms.
func WithRetry(retries int, baseDelay time.Duration) Option {
	return func(s *settings) error {
		if retries < 0 {
			return fmt.Errorf("%w: retries must not be negative, got %d", ErrInvalidOption, retries)
		}
		if baseDelay < 0 {
			return fmt.Errorf("%w: retry delay must not be negative, got %s", ErrInvalidOption, baseDelay)
		}
		s.retries = retries
		s.retryDelay = baseDelay
		return nil
	}
}

// WithMaxCategories caps how many categories the router may select.
// Default is 3.
func WithMaxCategories(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return fmt.Errorf("%w: max categories must be positive, got %d", ErrInvalidOption, n)
		}
		s.maxCategories = n
		return nil
	}
}

// WithCache sets the verdict cache shared by matchers.
// Default is a private cache.EvidenceCache with cache.DefaultConfig().
func WithCache(c VerdictCache) Option {
	return func(s *settings) error {
		s.cache = c
		return nil
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// WithRegisterer registers new metrics collectors with reg.
// Ignored when WithMetrics is also given.
// Default is a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) error {
		s.registerer = reg
		return nil
	}
}

// WithMonitor installs a monitor that observes every search.
func WithMonitor(m SearchMonitor) Option {
	return func(s *settings) error {
		if m == nil {
			m = &noopMonitor{}
		}
		s.monitor = m
		return nil
	}
}

// WithProgress reports submission progress to w.
func WithProgress(w io.Writer) Option {
	return func(s *settings) error {
		s.progress = w
		return nil
	}
}
