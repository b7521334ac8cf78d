package search

import (
	"github.com/poiesic/attestor/core"
)

// SearchMonitor provides hooks to observe a question search.
// A monitor installed with WithMonitor is shared by concurrent searches and
// must be safe for concurrent use. DocumentEvaluated is called in document
// order for every verdict the scanner resolves before it stops.
type SearchMonitor interface {
	Start(question string)
	AfterRouting(categories []core.Category)
	AfterCandidates(docs []*core.PolicyDocument)
	DocumentEvaluated(doc *core.PolicyDocument, verdict core.MatchVerdict)
	Finish(question string, result *core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string) {}

func (n *noopMonitor) AfterRouting(_ []core.Category) {}

func (n *noopMonitor) AfterCandidates(_ []*core.PolicyDocument) {}

func (n *noopMonitor) DocumentEvaluated(_ *core.PolicyDocument, _ core.MatchVerdict) {}

func (n *noopMonitor) Finish(_ string, _ *core.SearchResult) {}
