package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/attestor/ai/mock"
	"github.com/poiesic/attestor/cache"
	"github.com/poiesic/attestor/core"
	"github.com/poiesic/attestor/storage"
	"github.com/poiesic/attestor/storage/badger"
	"github.com/stretchr/testify/require"
)

const urgentQuestion = "Are urgent authorizations processed within 72 hours?"

// isRouterPrompt distinguishes routing prompts from match prompts.
func isRouterPrompt(prompt string) bool {
	return strings.Contains(prompt, "Available categories:")
}

// promptFor reports whether a match prompt concerns the policy with number.
func promptFor(prompt, number string) bool {
	return strings.Contains(prompt, "Policy: "+number+" ")
}

func matchJSON(found bool, excerpt string, confidence float64) string {
	b, err := json.Marshal(matchResponse{Found: found, Excerpt: excerpt, Confidence: confidence})
	if err != nil {
		panic(err)
	}
	return string(b)
}

func notFoundJSON() string {
	return matchJSON(false, "", 0)
}

// scriptedCompleter answers routing prompts with route and match prompts with match.
func scriptedCompleter(route string, match func(prompt string) string) *mock.MockCompleter {
	m := mock.NewMockCompleter()
	m.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		if isRouterPrompt(prompt) {
			return route, nil
		}
		return match(prompt), nil
	}
	return m
}

// matchCalls counts the match prompts a mock completer received.
func matchCalls(m *mock.MockCompleter) int {
	n := 0
	for _, p := range m.Prompts() {
		if !isRouterPrompt(p) {
			n++
		}
	}
	return n
}

func newTestCorpus(t *testing.T, docs ...*core.PolicyDocument) storage.CorpusRepository {
	t.Helper()
	corpus, backend, err := badger.NewMemoryCorpus()
	require.NoError(t, err)
	t.Cleanup(func() {
		corpus.Close()
		backend.Close()
	})
	if len(docs) > 0 {
		_, err = corpus.AddDocuments(context.Background(), docs...)
		require.NoError(t, err)
	}
	return corpus
}

func newTestCache(t *testing.T, clock cache.Clock) *cache.EvidenceCache {
	t.Helper()
	c, err := cache.New(cache.DefaultConfig(), cache.WithClock(clock))
	require.NoError(t, err)
	return c
}

// manualClock is a cache.Clock moved forward by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeCorpus is a storage.CorpusReader with canned answers.
type fakeCorpus struct {
	docs []*core.PolicyDocument
	err  error
}

func (f *fakeCorpus) ListByCategories(_ context.Context, _ ...core.Category) ([]*core.PolicyDocument, error) {
	return f.docs, f.err
}

// staticRouter always selects the same categories.
type staticRouter []core.Category

func (r staticRouter) SelectCategories(_ context.Context, _ string) []core.Category {
	return r
}

// evaluatorFunc adapts a function to DocumentEvaluator.
type evaluatorFunc func(ctx context.Context, question string, doc *core.PolicyDocument) core.MatchVerdict

func (f evaluatorFunc) Evaluate(ctx context.Context, question string, doc *core.PolicyDocument) (core.MatchVerdict, error) {
	return f(ctx, question, doc), nil
}

// failingEvaluator adapts a function that may report an incomplete evaluation.
type failingEvaluator func(ctx context.Context, question string, doc *core.PolicyDocument) (core.MatchVerdict, error)

func (f failingEvaluator) Evaluate(ctx context.Context, question string, doc *core.PolicyDocument) (core.MatchVerdict, error) {
	return f(ctx, question, doc)
}

// recordingMonitor captures monitor callbacks.
type recordingMonitor struct {
	mu         sync.Mutex
	started    []string
	categories []core.Category
	candidates int
	evaluated  []string
	finished   []*core.SearchResult
}

func (r *recordingMonitor) Start(question string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, question)
}

func (r *recordingMonitor) AfterRouting(categories []core.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = categories
}

func (r *recordingMonitor) AfterCandidates(docs []*core.PolicyDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = len(docs)
}

func (r *recordingMonitor) DocumentEvaluated(doc *core.PolicyDocument, _ core.MatchVerdict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluated = append(r.evaluated, doc.PolicyNumber)
}

func (r *recordingMonitor) Finish(_ string, result *core.SearchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, result)
}

var errTransport = errors.New("connection reset by peer")
