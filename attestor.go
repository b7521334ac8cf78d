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

// Package attestor answers compliance questions with verbatim evidence drawn
// from a corpus of policy documents.
//
// An Engine owns the on-disk corpus, the language model provider and the
// evidence cache, and hands out ingestion pipelines and search coordinators
// that share them.
package attestor

import (
	"log/slog"

	"github.com/poiesic/attestor/ai"
	"github.com/poiesic/attestor/ai/openai"
	"github.com/poiesic/attestor/cache"
	"github.com/poiesic/attestor/ingestion"
	"github.com/poiesic/attestor/search"
	"github.com/poiesic/attestor/storage"
	"github.com/poiesic/attestor/storage/badger"
)

type Engine struct {
	backend  *badger.Backend
	corpus   storage.CorpusRepository
	provider ai.AIProvider
	cache    *cache.EvidenceCache
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	cacheConfig cache.Config
	inMemory    bool
	logger      *slog.Logger
}

// WithAIConfig sets the configuration of the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a ready-made provider instead of building one from the AI config.
// The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithCacheConfig sets the evidence cache TTL and key prefix length.
func WithCacheConfig(config cache.Config) EngineOption {
	return func(o *engineOptions) {
		o.cacheConfig = config
	}
}

// WithInMemory keeps the corpus in memory; the file path is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:    ai.DefaultConfig(),
		cacheConfig: cache.DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	evidenceCache, err := cache.New(options.cacheConfig)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	corpus, err := badger.NewCorpusRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			corpus.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Engine{
		backend:  backend,
		corpus:   corpus,
		provider: provider,
		cache:    evidenceCache,
		logger:   options.logger,
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.corpus.Close(); err != nil {
		e.logger.Error("error closing corpus repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Corpus() storage.CorpusRepository {
	return e.corpus
}

func (e *Engine) Cache() *cache.EvidenceCache {
	return e.cache
}

func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(e.logger)}, opts...)
	return ingestion.NewPipeline(e.corpus, opts...)
}

// NewCoordinator builds a search coordinator over the engine's corpus and
// provider. Coordinators created by the same engine share its evidence cache.
func (e *Engine) NewCoordinator(opts ...search.Option) (*search.Coordinator, error) {
	opts = append([]search.Option{search.WithLogger(e.logger), search.WithCache(e.cache)}, opts...)
	return search.New(e.corpus, e.provider, opts...)
}
