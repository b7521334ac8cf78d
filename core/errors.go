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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuestion indicates a Question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidPolicyDocument indicates a PolicyDocument failed validation.
	ErrInvalidPolicyDocument = errors.New("invalid policy document")

	// ErrEmptyContent indicates a text field that must carry content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyPolicyNumber indicates the PolicyNumber field is empty.
	ErrEmptyPolicyNumber = errors.New("policy number cannot be empty")

	// ErrUnknownCategory indicates a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")
)
