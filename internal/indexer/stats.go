package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"hybridrag/internal/chunking"
)

// ChunkerVersion identifies the chunking implementation. Update this when
// chunking logic changes significantly.
const ChunkerVersion = "v2.0"

// CoverageStats describes the current state of the index.
type CoverageStats struct {
	// DocsProcessed is the number of stored documents.
	DocsProcessed int `json:"docs_processed"`
	// DocsWith0Chunks is the number of documents that produced no chunks.
	DocsWith0Chunks int `json:"docs_with_0_chunks"`
	// ChunksStored is the total number of stored chunks.
	ChunksStored int `json:"chunks_stored"`
	// DocsByStrategy counts documents per chunking strategy.
	DocsByStrategy map[string]int `json:"docs_by_strategy"`
	// ChunkTokenStats contains statistics about token counts per chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + params).
	IndexVersion string `json:"index_version"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes coverage statistics from the metadata store.
func (p *Pipeline) Stats(ctx context.Context) (*CoverageStats, error) {
	docs, err := p.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	stats := &CoverageStats{
		DocsProcessed:  len(docs),
		DocsByStrategy: make(map[string]int),
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   IndexVersion(p.model),
	}

	var tokenCounts []int
	for _, doc := range docs {
		stats.DocsByStrategy[doc.Strategy]++

		rows, err := p.chunks.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list chunks for %s: %w", doc.ID, err)
		}
		if len(rows) == 0 {
			stats.DocsWith0Chunks++
		}
		for _, r := range rows {
			tokenCounts = append(tokenCounts, r.TokenCount)
		}
	}

	stats.ChunksStored = len(tokenCounts)
	stats.ChunkTokenStats = computeTokenStats(tokenCounts)
	return stats, nil
}

// IndexVersion hashes the chunker version, embedding model and default
// chunking parameters into a 16 hex character identifier.
func IndexVersion(embeddingModel string) string {
	fixed := chunking.DefaultFixedParams()
	dynamic := chunking.DefaultDynamicParams()
	input := fmt.Sprintf("%s|%s|chunkSize=%d|overlap=%d|minFixed=%d|minDynamic=%d|maxDynamic=%d",
		ChunkerVersion, embeddingModel,
		fixed.ChunkSize, fixed.Overlap, fixed.MinChunkChars,
		dynamic.MinChunkChars, dynamic.MaxChunkChars,
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
