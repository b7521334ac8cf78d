package core

import (
	"errors"
	"testing"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		wantErr  error
	}{
		{name: "valid question", question: Question{Number: 1, Text: "Are appeals logged?"}},
		{name: "non contiguous number", question: Question{Number: 42, Text: "Are appeals logged?"}},
		{name: "empty text", question: Question{Number: 1}, wantErr: ErrEmptyContent},
		{name: "blank text", question: Question{Number: 1, Text: " \t\n"}, wantErr: ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.question)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuestion() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidQuestion) {
				t.Errorf("ValidateQuestion() error = %v, want ErrInvalidQuestion", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuestion() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePolicyDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *PolicyDocument
		wantErr error
	}{
		{
			name: "valid document",
			doc:  &PolicyDocument{PolicyNumber: "FIN-7", PolicyName: "Claims", Category: CategoryFinancial, Content: "text"},
		},
		{
			name: "empty content is allowed",
			doc:  &PolicyDocument{PolicyNumber: "FIN-7", Category: CategoryFinancial},
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidPolicyDocument,
		},
		{
			name:    "missing policy number",
			doc:     &PolicyDocument{Category: CategoryFinancial},
			wantErr: ErrEmptyPolicyNumber,
		},
		{
			name:    "unknown category",
			doc:     &PolicyDocument{PolicyNumber: "X-1", Category: "marketing"},
			wantErr: ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePolicyDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePolicyDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePolicyDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
