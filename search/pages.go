package search

import (
	"regexp"
	"unicode/utf8"

	"github.com/poiesic/attestor/core"
)

// pageMarker matches "Page N of M" boundary text.
var pageMarker = regexp.MustCompile(`(?i)\bpage\s+(\d+)\s+of\s+(\d+)\b`)

const truncationMarker = "\n[... page text truncated ...]"

// Segment splits content into page chunks at "Page N of M" markers.
//
// Each chunk runs from its marker to the next marker or the end of content and
// is labeled "N of M". Text before the first marker belongs to the first chunk,
// so the chunk texts concatenate back to content. Content without markers is a
// single chunk labeled core.DefaultPageLabel.
func Segment(content string) []core.PageChunk {
	locs := pageMarker.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return []core.PageChunk{{PageLabel: core.DefaultPageLabel, Text: content}}
	}

	chunks := make([]core.PageChunk, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			start = 0
		}
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunks = append(chunks, core.PageChunk{
			PageLabel: content[loc[2]:loc[3]] + " of " + content[loc[4]:loc[5]],
			Text:      content[start:end],
			Offset:    start,
		})
	}
	return chunks
}

// boundPageText truncates text to maxRunes runes, appending a visible marker
// when anything was cut.
func boundPageText(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	return string([]rune(text)[:maxRunes]) + truncationMarker
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
