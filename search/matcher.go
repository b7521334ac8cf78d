// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/attestor/ai"
	"github.com/poiesic/attestor/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DocumentEvaluator decides whether a document answers a question.
type DocumentEvaluator interface {
	Evaluate(ctx context.Context, question string, doc *core.PolicyDocument) (core.MatchVerdict, error)
}

// Matcher evaluates a document page by page and stops at the first page
// whose verdict qualifies. Verdicts are memoized in a VerdictCache.
type Matcher struct {
	completer    ai.Completer
	cache        VerdictCache
	maxPageChars int
	callTimeout  time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	metrics      *Metrics
	logger       *slog.Logger
}

var _ DocumentEvaluator = (*Matcher)(nil)

// matchResponse is the JSON shape requested by the match prompt.
type matchResponse struct {
	Found      bool    `json:"found"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
}

var (
	// errPageIncomplete marks a document with a page whose call kept failing
	// at the transport level.
	errPageIncomplete = errors.New("page not evaluated")
	// errPageTimedOut marks a page whose call ran past the call timeout.
	errPageTimedOut = errors.New("page evaluation timed out")
)

// NewMatcher creates a new matcher.
func NewMatcher(completer ai.Completer, opts ...Option) (*Matcher, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	return newMatcher(completer, s)
}

func newMatcher(completer ai.Completer, s *settings) (*Matcher, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	return &Matcher{
		completer:    completer,
		cache:        s.cache,
		maxPageChars: s.maxPageChars,
		callTimeout:  s.callTimeout,
		maxAttempts:  s.retries + 1,
		retryDelay:   s.retryDelay,
		metrics:      s.metrics,
		logger:       s.logger.With("component", "matcher"),
	}, nil
}

// Evaluate returns the first qualifying page verdict for doc, or a negative
// verdict once every page has been checked. Negative verdicts are cached only
// when every page produced an answer and ctx is still live.
//
// A timed out page counts as not found. When no page qualifies and a page
// could not be evaluated because the completer kept failing, the negative
// verdict comes with errPageIncomplete. A cancelled ctx returns ctx.Err().
func (m *Matcher) Evaluate(ctx context.Context, question string, doc *core.PolicyDocument) (core.MatchVerdict, error) {
	ctx, span := tracer.Start(ctx, "search.document", trace.WithAttributes(documentAttrs(doc)...))
	defer span.End()

	if verdict, ok := m.lookup(ctx, question, doc.ID); ok {
		span.SetAttributes(attribute.Bool("attestor.cache_hit", true))
		return verdict, nil
	}

	complete := true
	var pageErr error
	for _, chunk := range Segment(doc.Content) {
		if ctx.Err() != nil {
			break
		}
		verdict, err := m.evaluatePage(ctx, question, doc, chunk)
		if err != nil {
			complete = false
			if errors.Is(err, errPageIncomplete) {
				pageErr = err
			}
			continue
		}
		if verdict.Qualifies() {
			span.SetAttributes(attribute.String("attestor.page", verdict.PageLabel))
			m.store(ctx, question, doc.ID, verdict)
			return verdict, nil
		}
	}

	miss := core.MatchVerdict{Found: false}
	if err := ctx.Err(); err != nil {
		return miss, err
	}
	if pageErr != nil {
		span.SetAttributes(attribute.Bool("attestor.incomplete", true))
		return miss, pageErr
	}
	if complete {
		m.store(ctx, question, doc.ID, miss)
	}
	return miss, nil
}

// evaluatePage asks the completer about a single page. A malformed answer is
// a negative verdict. errPageTimedOut is returned when the call timed out and
// errPageIncomplete when retries ran out on transport failures.
func (m *Matcher) evaluatePage(ctx context.Context, question string, doc *core.PolicyDocument, chunk core.PageChunk) (core.MatchVerdict, error) {
	if strings.TrimSpace(chunk.Text) == "" {
		return core.MatchVerdict{}, nil
	}

	prompt := matchPrompt(question, doc, chunk, m.maxPageChars)

	var response string
	err := RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
		defer cancel()

		var err error
		response, err = m.completer.Complete(callCtx, prompt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return Permanent(ctx.Err())
		}
		if callCtx.Err() != nil {
			m.metrics.inferenceCall(stageMatch, outcomeTimeout)
			return Permanent(errors.Join(err, context.DeadlineExceeded))
		}
		m.metrics.inferenceCall(stageMatch, outcomeError)
		return err
	}, m.maxAttempts, m.retryDelay)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return core.MatchVerdict{}, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		m.logger.Warn("match call timed out, treating page as not found",
			"policy", doc.DisplayName(), "page", chunk.PageLabel, "err", err)
		return core.MatchVerdict{}, errPageTimedOut
	default:
		m.logger.Warn("match call failed",
			"policy", doc.DisplayName(), "page", chunk.PageLabel, "err", err)
		return core.MatchVerdict{}, errPageIncomplete
	}

	var parsed matchResponse
	if err := decodeResponse(response, &parsed); err != nil {
		m.metrics.inferenceCall(stageMatch, outcomeMalformed)
		m.logger.Warn("error parsing match response",
			"policy", doc.DisplayName(), "page", chunk.PageLabel, "response", response, "err", err)
		return core.MatchVerdict{}, nil
	}
	m.metrics.inferenceCall(stageMatch, outcomeOK)

	if !parsed.Found {
		return core.MatchVerdict{PageLabel: chunk.PageLabel, Confidence: clamp(parsed.Confidence)}, nil
	}

	excerpt, ok := locateExcerpt(chunk.Text, parsed.Excerpt)
	if !ok {
		m.logger.Warn("excerpt not present in page text, discarding match",
			"policy", doc.DisplayName(), "page", chunk.PageLabel, "excerpt", parsed.Excerpt)
		return core.MatchVerdict{PageLabel: chunk.PageLabel}, nil
	}

	return core.MatchVerdict{
		Found:      true,
		Excerpt:    truncateRunes(excerpt, core.MaxExcerptLength),
		Confidence: clamp(parsed.Confidence),
		PageLabel:  chunk.PageLabel,
	}, nil
}

func (m *Matcher) lookup(ctx context.Context, question, documentID string) (core.MatchVerdict, bool) {
	verdict, ok, err := m.cache.Get(ctx, question, documentID)
	switch {
	case err != nil:
		m.metrics.cacheLookup("error")
		if ctx.Err() == nil {
			m.logger.Warn("cache lookup failed", "documentID", documentID, "err", err)
		}
		return core.MatchVerdict{}, false
	case ok:
		m.metrics.cacheLookup("hit")
		return verdict, true
	default:
		m.metrics.cacheLookup("miss")
		return core.MatchVerdict{}, false
	}
}

func (m *Matcher) store(ctx context.Context, question, documentID string, verdict core.MatchVerdict) {
	if err := m.cache.Put(ctx, question, documentID, verdict); err != nil && ctx.Err() == nil {
		m.logger.Warn("cache write failed", "documentID", documentID, "err", err)
	}
}

// locateExcerpt finds excerpt in page and returns the page's own text for it.
// Differences in whitespace are tolerated; anything else is a miss.
func locateExcerpt(page, excerpt string) (string, bool) {
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		return "", false
	}
	if strings.Contains(page, excerpt) {
		return excerpt, true
	}

	words := strings.Fields(excerpt)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(strings.Join(words, `\s+`))
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(page)
	if loc == nil {
		return "", false
	}
	return page[loc[0]:loc[1]], true
}

func clamp(confidence float64) float64 {
	switch {
	case confidence < 0:
		return 0
	case confidence > 1:
		return 1
	}
	return confidence
}
