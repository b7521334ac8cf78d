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


// Package search finds the policy evidence that answers compliance questions.
//
// A search runs in stages:
//   - Router asks the model which policy categories a question belongs to
//   - Scanner lists those categories from the corpus and evaluates every
//     candidate document concurrently, in batches
//   - Matcher checks a document page by page (see Segment) and stops at the
//     first page whose verdict clears core.ConfidenceThreshold
//   - Coordinator runs the scanner for every question of a submission
//
// The first qualifying document in corpus order wins. Results are never
// ranked by confidence. Verdicts are memoized per question prefix and
// document so repeated questions do not repeat inference calls.
package search
