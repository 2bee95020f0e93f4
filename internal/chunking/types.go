package chunking

// Chunk represents a retrievable span of document text.
// Chunks are values: code that needs a different chunk builds a new one.
type Chunk struct {
	Text  string // Chunk text content (never blank)
	Start int    // Rune offset of the first character in the source text
	End   int    // Rune offset one past the last character in the source text
	Index int    // Position among the chunks of the same document (starts at 0)
}

// Strategy names a chunking strategy chosen by the analyzer.
type Strategy string

const (
	// StrategyFixed is size-bounded, sentence-aware chunking.
	StrategyFixed Strategy = "fixed"
	// StrategyDynamic follows section boundaries of the source document.
	StrategyDynamic Strategy = "dynamic"
)

const (
	// CharsPerToken converts token-ish budgets to character budgets.
	CharsPerToken = 4

	defaultChunkSize       = 512
	defaultOverlap         = 50
	defaultFixedMinChars   = 50
	defaultDynamicMinChars = 100
	defaultDynamicMaxChars = 1500
)

// FixedParams configures ChunkFixed. Sizes are approximate token counts.
type FixedParams struct {
	ChunkSize     int `json:"chunk_size"`
	Overlap       int `json:"overlap"`
	MinChunkChars int `json:"min_chunk_chars"`
}

// DynamicParams configures ChunkDynamic. Sizes are characters.
type DynamicParams struct {
	MinChunkChars int `json:"min_chunk_chars"`
	MaxChunkChars int `json:"max_chunk_chars"`
}

// Plan is the analyzer's decision: a strategy and the parameters its chunker consumes.
type Plan struct {
	Strategy Strategy      `json:"strategy"`
	Fixed    FixedParams   `json:"fixed,omitempty"`
	Dynamic  DynamicParams `json:"dynamic,omitempty"`
}

// DefaultFixedParams returns the parameter set used for flat prose.
func DefaultFixedParams() FixedParams {
	return FixedParams{
		ChunkSize:     defaultChunkSize,
		Overlap:       defaultOverlap,
		MinChunkChars: defaultFixedMinChars,
	}
}

// DefaultDynamicParams returns the parameter set used for structured documents.
func DefaultDynamicParams() DynamicParams {
	return DynamicParams{
		MinChunkChars: defaultDynamicMinChars,
		MaxChunkChars: defaultDynamicMaxChars,
	}
}

// Apply runs the chunker selected by the plan.
func (p Plan) Apply(text string, sections []string) []Chunk {
	if p.Strategy == StrategyDynamic {
		return ChunkDynamic(text, sections, p.Dynamic)
	}
	return ChunkFixed(text, p.Fixed)
}
