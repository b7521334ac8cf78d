package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchVerdict_Qualifies(t *testing.T) {
	tests := []struct {
		name    string
		verdict MatchVerdict
		want    bool
	}{
		{name: "found above threshold", verdict: MatchVerdict{Found: true, Confidence: 0.95}, want: true},
		{name: "found at threshold", verdict: MatchVerdict{Found: true, Confidence: 0.6}, want: false},
		{name: "found below threshold", verdict: MatchVerdict{Found: true, Confidence: 0.3}, want: false},
		{name: "not found with high confidence", verdict: MatchVerdict{Found: false, Confidence: 0.99}, want: false},
		{name: "zero value", verdict: MatchVerdict{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.verdict.Qualifies())
		})
	}
}

func TestQuestionFingerprint(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, QuestionFingerprint("Are claims paid?", 200), QuestionFingerprint("Are claims paid?", 200))
	})

	t.Run("case and surrounding whitespace are ignored", func(t *testing.T) {
		assert.Equal(t, QuestionFingerprint("  Are Claims Paid?\n", 200), QuestionFingerprint("are claims paid?", 200))
	})

	t.Run("different questions differ", func(t *testing.T) {
		assert.NotEqual(t, QuestionFingerprint("Are claims paid?", 200), QuestionFingerprint("Are appeals logged?", 200))
	})

	t.Run("questions differing past the prefix collide", func(t *testing.T) {
		prefix := strings.Repeat("a", 20)
		assert.Equal(t, QuestionFingerprint(prefix+"first tail", 20), QuestionFingerprint(prefix+"second tail", 20))
	})

	t.Run("prefix is measured in runes", func(t *testing.T) {
		assert.Equal(t, QuestionFingerprint("ééé-x", 3), QuestionFingerprint("ééé-y", 3))
	})

	t.Run("hex encoded 64 bit digest", func(t *testing.T) {
		assert.Len(t, QuestionFingerprint("anything", 200), 16)
	})
}

func TestPolicyDocument_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		doc  PolicyDocument
		want string
	}{
		{name: "number and name", doc: PolicyDocument{PolicyNumber: "UM-101", PolicyName: "Prior Authorization"}, want: "UM-101 - Prior Authorization"},
		{name: "number only", doc: PolicyDocument{PolicyNumber: "UM-101"}, want: "UM-101"},
		{name: "name only", doc: PolicyDocument{PolicyName: "Prior Authorization"}, want: "Prior Authorization"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.DisplayName())
		})
	}
}

func TestSearchResultConstructors(t *testing.T) {
	doc := &PolicyDocument{
		ID:           "doc-1",
		PolicyNumber: "UM-101",
		PolicyName:   "Prior Authorization",
		Category:     CategoryUtilizationManagement,
	}
	verdict := MatchVerdict{Found: true, Excerpt: "within 72 hours", Confidence: 0.9, PageLabel: "3 of 10"}

	met := Met(doc, verdict)
	require.NotNil(t, met.Evidence)
	assert.Equal(t, StatusMet, met.Status)
	assert.Equal(t, "UM-101", met.Evidence.PolicyNumber)
	assert.Equal(t, "Prior Authorization", met.Evidence.PolicyName)
	assert.Equal(t, "3 of 10", met.Evidence.Page)
	assert.Equal(t, "within 72 hours", met.Evidence.Excerpt)
	assert.Equal(t, 0.9, met.Evidence.Confidence)
	assert.Equal(t, CategoryUtilizationManagement, met.Evidence.Category)

	assert.Equal(t, StatusNotMet, NotMet().Status)
	assert.Nil(t, NotMet().Evidence)
	assert.Equal(t, StatusUnderReview, UnderReview().Status)
	assert.Nil(t, UnderReview().Evidence)
}

func TestPolicyDocumentMUS(t *testing.T) {
	doc := PolicyDocument{
		ID:           "0b6f7c9e",
		PolicyNumber: "UM-101",
		PolicyName:   "Prior Authorization",
		Category:     CategoryUtilizationManagement,
		Content:      "Page 1 of 2\nUrgent requests...\nPage 2 of 2\n...",
	}

	buf := make([]byte, PolicyDocumentMUS.Size(doc))
	n := PolicyDocumentMUS.Marshal(doc, buf)
	assert.Equal(t, len(buf), n)

	decoded, read, err := PolicyDocumentMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, doc, decoded)
}
