package search

import (
	"github.com/poiesic/attestor/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/poiesic/attestor/search")

func documentAttrs(doc *core.PolicyDocument) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("attestor.document.id", doc.ID),
		attribute.String("attestor.document.policy_number", doc.PolicyNumber),
		attribute.String("attestor.document.category", string(doc.Category)),
	}
}

func categoryAttr(categories []core.Category) attribute.KeyValue {
	tags := make([]string, len(categories))
	for i, c := range categories {
		tags[i] = string(c)
	}
	return attribute.StringSlice("attestor.categories", tags)
}
