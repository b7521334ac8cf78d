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


package storage

import (
	"fmt"

	"github.com/poiesic/attestor/core"
)

// MarshalPolicyDocument serializes a PolicyDocument to bytes.
func MarshalPolicyDocument(doc *core.PolicyDocument) []byte {
	buf := make([]byte, core.PolicyDocumentMUS.Size(*doc))
	core.PolicyDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalPolicyDocument deserializes a PolicyDocument from bytes.
func UnmarshalPolicyDocument(data []byte) (*core.PolicyDocument, error) {
	doc, _, err := core.PolicyDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}
