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

import "errors"

var (
	// ErrCorpusRequired is returned when a corpus reader is not provided.
	ErrCorpusRequired = errors.New("corpus reader required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrRouterRequired is returned when a category selector is not provided.
	ErrRouterRequired = errors.New("category selector required")

	// ErrMatcherRequired is returned when a document evaluator is not provided.
	ErrMatcherRequired = errors.New("document evaluator required")

	// ErrScannerRequired is returned when a question searcher is not provided.
	ErrScannerRequired = errors.New("question searcher required")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrMalformedResponse is returned when a model response cannot be decoded.
	ErrMalformedResponse = errors.New("malformed model response")
)
