package search

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/attestor/ai"
	"github.com/poiesic/attestor/core"
)

// CategorySelector picks the corpus categories to search for a question.
type CategorySelector interface {
	SelectCategories(ctx context.Context, question string) []core.Category
}

// Router selects categories with a single inference call.
// It never fails: any routing problem falls back to core.DefaultCategories.
type Router struct {
	completer     ai.Completer
	maxCategories int
	callTimeout   time.Duration
	metrics       *Metrics
	logger        *slog.Logger
}

var _ CategorySelector = (*Router)(nil)

// NewRouter creates a new router.
func NewRouter(completer ai.Completer, opts ...Option) (*Router, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	return newRouter(completer, s)
}

func newRouter(completer ai.Completer, s *settings) (*Router, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	return &Router{
		completer:     completer,
		maxCategories: s.maxCategories,
		callTimeout:   s.callTimeout,
		metrics:       s.metrics,
		logger:        s.logger.With("component", "router"),
	}, nil
}

// SelectCategories returns up to the configured number of distinct categories
// for question. A well-formed empty answer yields no categories.
func (r *Router) SelectCategories(ctx context.Context, question string) []core.Category {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	response, err := r.completer.Complete(callCtx, routerPrompt(question, r.maxCategories))
	if err != nil {
		outcome := outcomeError
		if callCtx.Err() != nil && ctx.Err() == nil {
			outcome = outcomeTimeout
		}
		r.metrics.inferenceCall(stageRoute, outcome)
		return r.fallback("routing call failed", err)
	}

	var tags []string
	if err := decodeResponse(response, &tags); err != nil || tags == nil {
		// Some models wrap the list in an object
		var wrapped struct {
			Categories []string `json:"categories"`
		}
		if wrapErr := decodeResponse(response, &wrapped); wrapErr != nil || wrapped.Categories == nil {
			r.metrics.inferenceCall(stageRoute, outcomeMalformed)
			return r.fallback("unparseable routing response", wrapErr, "response", response)
		}
		tags = wrapped.Categories
	}
	r.metrics.inferenceCall(stageRoute, outcomeOK)

	if len(tags) == 0 {
		r.logger.Debug("question routed to no categories")
		return []core.Category{}
	}

	selected := make([]core.Category, 0, r.maxCategories)
	for _, tag := range tags {
		category, err := core.ParseCategory(tag)
		if err != nil {
			r.logger.Debug("dropping unknown category", "tag", tag)
			continue
		}
		if slices.Contains(selected, category) {
			continue
		}
		selected = append(selected, category)
		if len(selected) == r.maxCategories {
			break
		}
	}

	if len(selected) == 0 {
		return r.fallback("routing response named no known categories", nil, "tags", tags)
	}

	r.logger.Debug("question routed", "categories", selected)
	return selected
}

func (r *Router) fallback(msg string, err error, args ...any) []core.Category {
	r.metrics.routingFallback()
	args = append(args, "fallback", core.DefaultCategories)
	if err != nil {
		args = append(args, "err", err)
	}
	r.logger.Warn(msg, args...)
	return slices.Clone(core.DefaultCategories)
}
