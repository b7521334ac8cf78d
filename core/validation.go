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

import (
	"fmt"
	"strings"
)

// ValidateQuestion validates a Question according to domain rules.
//
// Validation rules:
//   - Text must not be blank
//
// Number is not validated; callers may use any integer, including gaps.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuestion, ErrEmptyContent)
	}
	return nil
}

// ValidatePolicyDocument validates a PolicyDocument according to domain rules.
//
// Validation rules:
//   - PolicyNumber must not be empty
//   - Category must belong to the closed category set
//
// Content may be empty: empty documents are stored but never searched.
// ID is not validated (assigned by ingestion when missing).
func ValidatePolicyDocument(doc *PolicyDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidPolicyDocument)
	}

	if strings.TrimSpace(doc.PolicyNumber) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPolicyDocument, ErrEmptyPolicyNumber)
	}

	if !doc.Category.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidPolicyDocument, ErrUnknownCategory, doc.Category)
	}

	return nil
}
