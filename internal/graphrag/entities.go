// Package graphrag builds a per-request entity co-occurrence graph over chunks
// and uses it to widen similarity search.
package graphrag

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxEntitiesPerChunk bounds how many entities one chunk contributes to the graph.
const MaxEntitiesPerChunk = 20

// EntityExtractor finds entity labels in a piece of text.
// Implementations return labels in order of first appearance without duplicates.
type EntityExtractor interface {
	ExtractEntities(text string) []string
}

// entityPattern matches capitalized Latin phrases ("New York City") and Arabic
// words including their diacritics.
var entityPattern = regexp.MustCompile(
	`\p{Lu}\p{Ll}+(?:[ \t]+\p{Lu}\p{Ll}+)*` +
		`|\p{Arabic}[\p{Arabic}\x{064B}-\x{065F}\x{0670}]*`,
)

// HeuristicExtractor is the regex-based EntityExtractor used when nothing better is plugged in.
// It never rewrites the matched text, so diacritics survive.
type HeuristicExtractor struct{}

// ExtractEntities returns up to MaxEntitiesPerChunk distinct labels longer than one rune.
func (HeuristicExtractor) ExtractEntities(text string) []string {
	matches := entityPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if utf8.RuneCountInString(m) <= 1 {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) == MaxEntitiesPerChunk {
			break
		}
	}
	return out
}
