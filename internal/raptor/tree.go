// Package raptor builds a two-level summary tree over chunks and retrieves
// through both levels.
package raptor

import (
	"strings"

	"hybridrag/internal/chunking"
)

const (
	// DefaultMaxLevels builds leaves plus one summary level.
	DefaultMaxLevels = 2

	summarySentences    = 5
	summaryFallbackRune = 500
	groupsPerLevel      = 3
)

// Node is a tree node. Level-0 nodes mirror chunks one to one and come first;
// level-1 nodes summarize a contiguous run of them.
type Node struct {
	Text         string `json:"text"`
	Level        int    `json:"level"`
	ChunkIndices []int  `json:"chunk_indices"`
	Index        int    `json:"index"`
}

// BuildTree returns the flat node list for chunks. ChunkIndices hold positions
// in chunks, so they double as positions in the level-0 prefix of the result.
func BuildTree(chunks []chunking.Chunk, maxLevels int) []Node {
	if len(chunks) == 0 {
		return []Node{}
	}

	nodes := make([]Node, 0, len(chunks)+groupsPerLevel+1)
	for i, c := range chunks {
		nodes = append(nodes, Node{
			Text:         c.Text,
			Level:        0,
			ChunkIndices: []int{i},
			Index:        i,
		})
	}

	if maxLevels < 2 || len(chunks) < 2 {
		return nodes
	}

	groupSize := len(chunks) / groupsPerLevel
	if groupSize < 1 {
		groupSize = 1
	}

	for start := 0; start < len(chunks); start += groupSize {
		end := start + groupSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Text)
			indices = append(indices, i)
		}

		nodes = append(nodes, Node{
			Text:         ExtractiveSummary(strings.Join(texts, " "), summarySentences),
			Level:        1,
			ChunkIndices: indices,
			Index:        len(nodes),
		})
	}
	return nodes
}

// ExtractiveSummary keeps the first n sentences of text. Text without any
// non-empty sentence is cut to its first 500 runes instead.
func ExtractiveSummary(text string, n int) string {
	if !strings.ContainsAny(text, ".!?") {
		return truncateRunes(text, summaryFallbackRune)
	}

	normalized := strings.NewReplacer("!", ".", "?", ".").Replace(text)
	sentences := make([]string, 0, n)
	for _, s := range strings.Split(normalized, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == n {
			break
		}
	}
	if len(sentences) == 0 {
		return truncateRunes(text, summaryFallbackRune)
	}
	return strings.Join(sentences, ". ")
}

func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
