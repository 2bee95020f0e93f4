package chunking

import (
	"strings"
	"unicode/utf8"
)

const sectionSeparator = "\n\n"

// section is a trimmed section text with its rune range in the source text.
type section struct {
	text string
	span
}

// ChunkDynamic merges consecutive sections into chunks of at most p.MaxChunkChars.
// A section is never split, so a single oversized section becomes one oversized chunk.
// Without usable sections the text is chunked with ChunkFixed and no overlap.
func ChunkDynamic(text string, sections []string, p DynamicParams) []Chunk {
	p = p.withDefaults()

	located := locateSections(text, sections)
	if len(located) == 0 {
		return ChunkFixed(text, FixedParams{
			ChunkSize:     p.MaxChunkChars / CharsPerToken,
			Overlap:       0,
			MinChunkChars: p.MinChunkChars,
		})
	}

	chunks := []Chunk{}
	var group []section
	groupLen := 0

	flush := func() {
		parts := make([]string, len(group))
		for i, s := range group {
			parts[i] = s.text
		}
		joined := strings.Join(parts, sectionSeparator)
		if utf8.RuneCountInString(strings.TrimSpace(joined)) < p.MinChunkChars {
			return
		}
		end := group[len(group)-1].end
		if end < group[0].start {
			end = group[0].start + utf8.RuneCountInString(joined)
		}
		chunks = append(chunks, Chunk{
			Text:  joined,
			Start: group[0].start,
			End:   end,
			Index: len(chunks),
		})
	}

	for _, s := range located {
		secLen := utf8.RuneCountInString(s.text) + utf8.RuneCountInString(sectionSeparator)
		if groupLen+secLen > p.MaxChunkChars && len(group) > 0 {
			flush()
			group = nil
			groupLen = 0
		}
		group = append(group, s)
		groupLen += secLen
	}
	if len(group) > 0 {
		flush()
	}

	return chunks
}

func (p DynamicParams) withDefaults() DynamicParams {
	if p.MinChunkChars <= 0 {
		p.MinChunkChars = defaultDynamicMinChars
	}
	if p.MaxChunkChars <= 0 {
		p.MaxChunkChars = defaultDynamicMaxChars
	}
	return p
}

// locateSections trims sections, drops blank ones and finds each in text by a
// forward search. Sections that cannot be found are placed right after the
// previous one.
func locateSections(text string, sections []string) []section {
	out := make([]section, 0, len(sections))
	cursorByte, cursorRune := 0, 0
	lastEnd := 0

	for _, raw := range sections {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		n := utf8.RuneCountInString(trimmed)

		if idx := strings.Index(text[cursorByte:], trimmed); idx >= 0 {
			startByte := cursorByte + idx
			start := cursorRune + utf8.RuneCountInString(text[cursorByte:startByte])
			cursorByte = startByte + len(trimmed)
			cursorRune = start + n
			lastEnd = cursorRune
			out = append(out, section{text: trimmed, span: span{start: start, end: start + n}})
			continue
		}

		out = append(out, section{text: trimmed, span: span{start: lastEnd, end: lastEnd + n}})
		lastEnd += n
	}
	return out
}
