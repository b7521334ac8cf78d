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


// Package storage provides the corpus store abstraction for Attestor.
//
// This package defines repository interfaces that decouple the policy corpus
// from the retrieval engine. The engine only reads (CorpusReader); ingestion
// and tooling write through CorpusRepository.
//
// # Ordering
//
// Listing is deterministic: documents are ordered by category and then by
// policy number. The retrieval engine relies on this to make "first match"
// reproducible for a given corpus snapshot.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	corpus, err := badger.NewCorpusRepository(backend)
//	docs, err := corpus.ListByCategories(ctx, core.CategoryFinancial)
//
// Use in tests with in-memory storage:
//
//	corpus, backend, err := badger.NewMemoryCorpus()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
