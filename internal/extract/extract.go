// Package extract turns files on disk into raw text plus a list of sections
// the chunkers can work with.
package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	// ErrFileNotFound is returned when the path does not exist or is not a regular file.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for extensions no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Supported formats.
const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatDocx     = "docx"
	FormatPDF      = "pdf"
)

var formatsByExt = map[string]string{
	".txt":      FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".docx":     FormatDocx,
	".pdf":      FormatPDF,
}

// Section is one structural unit of a document: a paragraph, a heading
// section, a table row or a page.
type Section struct {
	Text string `json:"text"`
	// Label describes where the section came from, e.g. a heading path or "page 2".
	Label string `json:"label,omitempty"`
}

// Document is the extracted content of one file.
type Document struct {
	RawText  string    `json:"raw_text"`
	Format   string    `json:"format"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// SectionTexts returns the section texts in order.
func (d Document) SectionTexts() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Text
	}
	return out
}

// Extractor reads a document from a path.
type Extractor interface {
	Extract(path string) (Document, error)
}

// FileExtractor dispatches on file extension.
type FileExtractor struct{}

// Extract implements Extractor.
func (FileExtractor) Extract(path string) (Document, error) {
	return Extract(path)
}

// FormatOf returns the format for path's extension (case-insensitive).
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formatsByExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Supported reports whether path has an extension Extract can handle.
func Supported(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// Extract reads path and returns its text and sections.
func Extract(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Document{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Document{}, fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
	}

	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	switch format {
	case FormatText:
		doc, err = extractText(path)
	case FormatMarkdown:
		doc, err = extractMarkdown(path)
	case FormatDocx:
		doc, err = extractDocx(path)
	case FormatPDF:
		doc, err = extractPDF(path)
	}
	if err != nil {
		return Document{}, err
	}

	doc.Format = format
	if doc.Title == "" {
		doc.Title = titleFromFilename(path)
	}
	return doc, nil
}

// titleFromFilename strips the extension and capitalizes each word.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// paragraphSections splits text on blank lines. A non-blank text without
// any blank line becomes a single section.
func paragraphSections(text string) []Section {
	var sections []Section
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			sections = append(sections, Section{Text: p})
		}
	}
	return sections
}
