package rag

import (
	"sort"

	"hybridrag/internal/vectorstore"
)

type chunkKey struct {
	documentID string
	chunkIndex int
}

// Fuse merges candidate lists into one ranking keyed by (DocumentID, ChunkIndex).
//
// Sources are merged in argument order. A later candidate replaces an earlier one
// with the same key only when its score is strictly greater, and the replacement
// keeps the earlier merge position. The result is sorted by score descending with
// ties in merge order and cut to topK.
func Fuse(topK int, sources ...[]Candidate) []Candidate {
	if topK <= 0 {
		return []Candidate{}
	}

	positions := make(map[chunkKey]int)
	merged := make([]Candidate, 0)
	for _, source := range sources {
		for _, c := range source {
			k := chunkKey{documentID: c.DocumentID, chunkIndex: c.ChunkIndex}
			if i, ok := positions[k]; ok {
				if c.Score > merged[i].Score {
					merged[i] = c
				}
				continue
			}
			positions[k] = len(merged)
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

// VectorCandidates converts store hits to candidates with score = -distance.
func VectorCandidates(hits []vectorstore.Hit) []Candidate {
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, Candidate{
			Text:       h.Text,
			DocumentID: h.DocumentID,
			ChunkIndex: h.ChunkIndex,
			Score:      -h.Distance,
			Source:     SourceVector,
		})
	}
	return out
}
