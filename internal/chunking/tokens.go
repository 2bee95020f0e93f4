package chunking

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// TokenCounter reports how many tokens a text occupies for an embedding model.
type TokenCounter interface {
	CountTokens(text string) int
}

// EstimateCounter approximates tokens as one per CharsPerToken runes.
type EstimateCounter struct{}

// CountTokens returns the rounded rune estimate, at least 1 for non-blank text.
func (EstimateCounter) CountTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	n := int(math.Round(float64(utf8.RuneCountInString(text)) / CharsPerToken))
	if n < 1 {
		n = 1
	}
	return n
}

// TiktokenCounter counts tokens with a BPE encoding. The encoding is loaded on
// first use; if it cannot be loaded the counter falls back to EstimateCounter.
type TiktokenCounter struct {
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// NewTiktokenCounter creates a counter for the named encoding (DefaultEncoding when empty).
func NewTiktokenCounter(encoding string) *TiktokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenCounter{encoding: encoding}
}

func (t *TiktokenCounter) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Err returns the encoding load error, if any.
func (t *TiktokenCounter) Err() error {
	return t.init()
}

// CountTokens returns the encoded length of text.
func (t *TiktokenCounter) CountTokens(text string) int {
	if err := t.init(); err != nil {
		return EstimateCounter{}.CountTokens(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}
