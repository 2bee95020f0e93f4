package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a half-open rune range [start, end) of the source text.
type span struct {
	start int
	end   int
}

func (s span) len() int { return s.end - s.start }

// ChunkFixed splits text into sentence-aligned chunks of roughly p.ChunkSize tokens,
// carrying up to p.Overlap tokens of trailing sentences into the next chunk.
// Offsets in the returned chunks are rune offsets into text.
func ChunkFixed(text string, p FixedParams) []Chunk {
	p = p.withDefaults()
	size := p.ChunkSize * CharsPerToken
	overlap := p.Overlap * CharsPerToken

	runes := []rune(text)
	sentences := splitSentences(runes)
	if len(sentences) == 0 {
		return []Chunk{}
	}

	// A single unit larger than one chunk means the text has no usable sentence boundaries.
	if len(sentences) == 1 && sentences[0].len() > size {
		return slidingWindow(runes, sentences[0], size, overlap, p.MinChunkChars)
	}

	chunks := make([]Chunk, 0, len(sentences)/4+1)
	emit := func(group []span) {
		parts := make([]string, len(group))
		for i, s := range group {
			parts[i] = string(runes[s.start:s.end])
		}
		chunks = append(chunks, Chunk{
			Text:  strings.Join(parts, " "),
			Start: group[0].start,
			End:   group[len(group)-1].end,
			Index: len(chunks),
		})
	}

	var current []span
	currentLen := 0
	for _, s := range sentences {
		sentLen := s.len() + 1
		if currentLen+sentLen > size && len(current) > 0 {
			emit(current)
			current = overlapTail(current, overlap)
			currentLen = 0
			for _, c := range current {
				currentLen += c.len() + 1
			}
		}
		current = append(current, s)
		currentLen += sentLen
	}
	if len(current) > 0 {
		emit(current)
	}

	return chunks
}

func (p FixedParams) withDefaults() FixedParams {
	if p.ChunkSize <= 0 {
		p.ChunkSize = defaultChunkSize
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}
	// an overlap as large as the chunk would carry every earlier sentence forward
	if p.Overlap >= p.ChunkSize {
		p.Overlap = p.ChunkSize - 1
	}
	if p.MinChunkChars <= 0 {
		p.MinChunkChars = defaultFixedMinChars
	}
	return p
}

// overlapTail returns the trailing sentences of group that fit in budget characters.
func overlapTail(group []span, budget int) []span {
	used := 0
	k := len(group)
	for k > 0 {
		l := group[k-1].len()
		if used+l > budget {
			break
		}
		used += l + 1
		k--
	}
	tail := make([]span, len(group)-k)
	copy(tail, group[k:])
	return tail
}

// slidingWindow cuts region into windows of size runes that overlap by overlap runes.
// Windows whose trimmed text is shorter than minChars are dropped.
func slidingWindow(runes []rune, region span, size, overlap, minChars int) []Chunk {
	var chunks []Chunk
	start := region.start
	for start < region.end {
		end := start + size
		if end > region.end {
			end = region.end
		}
		piece := string(runes[start:end])
		if utf8.RuneCountInString(strings.TrimSpace(piece)) >= minChars {
			chunks = append(chunks, Chunk{
				Text:  piece,
				Start: start,
				End:   end,
				Index: len(chunks),
			})
		}
		if end >= region.end {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	if chunks == nil {
		return []Chunk{}
	}
	return chunks
}

// isSentenceTerminator reports whether r ends a sentence in Latin or Arabic text.
func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '۔':
		return true
	}
	return false
}

// splitSentences breaks runes into trimmed sentence spans. A boundary is a
// whitespace run after a terminator, or a run of newlines.
func splitSentences(runes []rune) []span {
	var out []span
	add := func(start, end int) {
		for start < end && unicode.IsSpace(runes[start]) {
			start++
		}
		for end > start && unicode.IsSpace(runes[end-1]) {
			end--
		}
		if end > start {
			out = append(out, span{start: start, end: end})
		}
	}

	segStart := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		boundaryEnd := -1
		switch {
		case i > 0 && isSentenceTerminator(runes[i-1]) && unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			boundaryEnd = j
		case r == '\n':
			j := i
			for j < len(runes) && runes[j] == '\n' {
				j++
			}
			boundaryEnd = j
		}
		if boundaryEnd < 0 {
			i++
			continue
		}
		add(segStart, i)
		segStart = boundaryEnd
		i = boundaryEnd
	}
	add(segStart, len(runes))
	return out
}
