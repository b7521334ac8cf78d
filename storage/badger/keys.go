package badger

import (
	"github.com/poiesic/attestor/core"
)

// Key prefixes for different data types
const (
	policyDocumentPrefix = "poldoc"
	policyCategoryPrefix = "polcat"
)

// keySeparator splits key segments. Policy numbers may contain ':' so a NUL is used.
const keySeparator = byte(0)

// makeDocumentKey generates a key for a policy document by ID.
// Format: prefix:id
func makeDocumentKey(id string) []byte {
	buf := make([]byte, 0, len(policyDocumentPrefix)+1+len(id))
	buf = append(buf, policyDocumentPrefix...)
	buf = append(buf, ':')
	return append(buf, id...)
}

// makeCategoryPrefix generates the index prefix for all documents in a category.
// Format: prefix:category\x00
func makeCategoryPrefix(category core.Category) []byte {
	buf := make([]byte, 0, len(policyCategoryPrefix)+2+len(category))
	buf = append(buf, policyCategoryPrefix...)
	buf = append(buf, ':')
	buf = append(buf, string(category)...)
	return append(buf, keySeparator)
}

// makeCategoryIndexPrefix generates the prefix shared by every category index key.
func makeCategoryIndexPrefix() []byte {
	return []byte(policyCategoryPrefix + ":")
}

// makeCategoryKey generates a composite key for the category index.
// Lexicographic key order yields (category, policy number, id) ordering.
// Format: prefix:category\x00policyNumber\x00id
func makeCategoryKey(doc *core.PolicyDocument) []byte {
	buf := makeCategoryPrefix(doc.Category)
	buf = append(buf, doc.PolicyNumber...)
	buf = append(buf, keySeparator)
	return append(buf, doc.ID...)
}
