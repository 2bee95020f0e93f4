package rag

// Source names the retrieval path a candidate came from.
type Source string

const (
	SourceVector    Source = "vector"
	SourceGraph     Source = "graph"
	SourceHierarchy Source = "hierarchy"
)

// Candidate is one retrieved chunk with its score. Higher Score is better.
type Candidate struct {
	// Text is the chunk text.
	Text string `json:"text"`
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id"`
	// ChunkIndex is the chunk position within its document.
	ChunkIndex int `json:"chunk_index"`
	// Score is the ranking score. Vector hits use the negated store distance,
	// graph and hierarchy hits use cosine similarity.
	Score float64 `json:"score"`
	// Source is the retrieval path that produced the winning score.
	Source Source `json:"source"`
}

// QueryRequest represents a retrieval query.
type QueryRequest struct {
	// Query is the natural language query.
	Query string `json:"query"`
	// TopK is the number of chunks to return.
	TopK int `json:"top_k"`
	// UseGraph enables entity graph expansion over the matched documents.
	UseGraph bool `json:"use_graph,omitempty"`
	// UseHierarchy enables multi-level summary tree retrieval over the matched documents.
	UseHierarchy bool `json:"use_hierarchy,omitempty"`
	// Filter restricts the vector search to points whose payload fields equal the given values.
	Filter map[string]any `json:"filter,omitempty"`
}

// QueryResponse represents the result of a retrieval query.
type QueryResponse struct {
	// Chunks are the fused results, best first.
	Chunks []Candidate `json:"chunks"`
	// Answer is a placeholder summary of the retrieved context.
	Answer string `json:"answer"`
	// Strategy reports how many candidates each path contributed.
	Strategy StrategyInfo `json:"strategy"`
}

// StrategyInfo describes the retrieval paths used for a query.
type StrategyInfo struct {
	FetchK          int `json:"fetch_k"`
	Vector          int `json:"vector"`
	Graph           int `json:"graph"`
	Hierarchy       int `json:"hierarchy"`
	CorpusDocuments int `json:"corpus_documents"`
	CorpusChunks    int `json:"corpus_chunks"`
}
