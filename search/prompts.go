package search

import (
	"fmt"
	"strings"

	"github.com/poiesic/attestor/core"
)

const routerPromptTemplate = `Classify the compliance question below into the policy categories most likely to
contain a policy that answers it.

Available categories:
%s

Rules:
- Choose between 1 and %d categories from the list above.
- Use the category names exactly as written.
- Respond with a JSON array of strings and nothing else, for example ["administration"].

Question: %s`

const matchPromptTemplate = `Decide whether the policy page below satisfies the compliance requirement in the question.

Question: %s

Policy: %s
Page: %s

Page text:
"""
%s
"""

Respond with a single JSON object and nothing else:
{"found": true or false, "excerpt": "<exact quote from the page text, at most %d characters>", "confidence": <number between 0 and 1>}

Rules:
- The excerpt must be copied verbatim from the page text. Do not paraphrase.
- If the page does not address the requirement, respond {"found": false, "excerpt": "", "confidence": 0}.`

func routerPrompt(question string, maxCategories int) string {
	var list strings.Builder
	for _, c := range core.Categories() {
		list.WriteString("- ")
		list.WriteString(string(c))
		list.WriteString("\n")
	}
	return fmt.Sprintf(routerPromptTemplate, strings.TrimRight(list.String(), "\n"), maxCategories, question)
}

func matchPrompt(question string, doc *core.PolicyDocument, chunk core.PageChunk, maxPageChars int) string {
	return fmt.Sprintf(matchPromptTemplate,
		question,
		doc.DisplayName(),
		chunk.PageLabel,
		boundPageText(chunk.Text, maxPageChars),
		core.MaxExcerptLength,
	)
}
