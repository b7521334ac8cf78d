package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

const (
	// ConfidenceThreshold is the confidence a verdict must exceed to count as a match.
	ConfidenceThreshold = 0.6

	// MaxExcerptLength bounds evidence excerpts, in runes.
	MaxExcerptLength = 250

	// DefaultPageLabel labels the single chunk of a document without page markers.
	DefaultPageLabel = "N/A"
)

// Question is a single compliance question produced by the question extractor.
// Numbers are assigned by the caller and need not be contiguous.
type Question struct {
	Number int    `json:"number" yaml:"number"`
	Text   string `json:"text" yaml:"text"`
}

// PolicyDocument is a policy held in the corpus store.
type PolicyDocument struct {
	ID           string
	PolicyNumber string
	PolicyName   string
	Category     Category
	Content      string
}

// DisplayName returns the human-readable name used in prompts and logs.
func (d *PolicyDocument) DisplayName() string {
	switch {
	case d.PolicyNumber == "":
		return d.PolicyName
	case d.PolicyName == "":
		return d.PolicyNumber
	}
	return d.PolicyNumber + " - " + d.PolicyName
}

// PageChunk is a page-like slice of a document's content.
// Offset is the byte offset of Text within the document content.
type PageChunk struct {
	PageLabel string
	Text      string
	Offset    int
}

// MatchVerdict is the outcome of evaluating one document against one question.
type MatchVerdict struct {
	Found      bool    `json:"found"`
	Excerpt    string  `json:"excerpt,omitempty"`
	Confidence float64 `json:"confidence"`
	PageLabel  string  `json:"page,omitempty"`
}

// Qualifies reports whether the verdict is strong enough to mark a question as met.
func (v MatchVerdict) Qualifies() bool {
	return v.Found && v.Confidence > ConfidenceThreshold
}

// Status is the compliance status assigned to a question.
type Status string

const (
	// StatusMet means supporting evidence was found.
	StatusMet Status = "met"
	// StatusNotMet means every candidate document was checked without a qualifying match.
	StatusNotMet Status = "not-met"
	// StatusUnderReview means the search could not be meaningfully executed.
	StatusUnderReview Status = "under-review"
)

// Evidence identifies the excerpt that satisfies a question.
type Evidence struct {
	PolicyName   string   `json:"policyName"`
	PolicyNumber string   `json:"policyNumber"`
	Page         string   `json:"page"`
	Excerpt      string   `json:"excerpt"`
	Confidence   float64  `json:"confidence"`
	Category     Category `json:"category"`
}

// SearchResult is the final per-question outcome.
// Evidence is present if and only if Status is StatusMet.
type SearchResult struct {
	Status   Status    `json:"status"`
	Evidence *Evidence `json:"evidence,omitempty"`
}

// Met builds a met result from a qualifying verdict on doc.
func Met(doc *PolicyDocument, verdict MatchVerdict) *SearchResult {
	return &SearchResult{
		Status: StatusMet,
		Evidence: &Evidence{
			PolicyName:   doc.PolicyName,
			PolicyNumber: doc.PolicyNumber,
			Page:         verdict.PageLabel,
			Excerpt:      verdict.Excerpt,
			Confidence:   verdict.Confidence,
			Category:     doc.Category,
		},
	}
}

// NotMet builds a not-met result.
func NotMet() *SearchResult {
	return &SearchResult{Status: StatusNotMet}
}

// UnderReview builds an under-review result.
func UnderReview() *SearchResult {
	return &SearchResult{Status: StatusUnderReview}
}

// QuestionFingerprint derives a stable key from the first prefixLen runes of a
// question after trimming and lowercasing. Questions that only differ past the
// prefix share a fingerprint.
func QuestionFingerprint(question string, prefixLen int) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if prefixLen > 0 && utf8.RuneCountInString(normalized) > prefixLen {
		normalized = string([]rune(normalized)[:prefixLen])
	}
	h, _ := blake2b.New(8, nil) // 64 bits
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}
