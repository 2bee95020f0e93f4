package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table))

type headingInfo struct {
	level int
	text  string
}

// headingStart is a top-level heading and the byte offset of its line.
type headingStart struct {
	offset int
	path   string
}

func extractMarkdown(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return Document{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedFormat, path)
	}
	return parseMarkdown(content), nil
}

// parseMarkdown keeps the markdown source as RawText and cuts it into one
// section per top-level heading. Sections are verbatim slices of the source
// so they can be located in RawText. Headings inside code blocks, lists or
// quotes do not split.
func parseMarkdown(content []byte) Document {
	raw := string(content)
	if strings.TrimSpace(raw) == "" {
		return Document{RawText: raw}
	}

	doc := markdownParser.Parser().Parse(text.NewReader(content))
	starts, title := collectHeadings(doc, content)
	if len(starts) == 0 {
		return Document{RawText: raw, Title: title, Sections: paragraphSections(raw)}
	}

	var sections []Section
	if pre := strings.TrimSpace(raw[:starts[0].offset]); pre != "" {
		sections = append(sections, Section{Text: pre})
	}
	for i, h := range starts {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1].offset
		}
		if body := strings.TrimSpace(raw[h.offset:end]); body != "" {
			sections = append(sections, Section{Text: body, Label: h.path})
		}
	}

	return Document{RawText: raw, Title: title, Sections: sections}
}

// collectHeadings walks the top-level blocks and returns heading line offsets
// with their heading paths, plus the document title: the first level 1
// heading, else the first level 2 heading.
func collectHeadings(doc ast.Node, content []byte) ([]headingStart, string) {
	var (
		starts  []headingStart
		stack   []headingInfo
		firstH1 string
		firstH2 string
	)

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}

		headingText := extractTextFromNode(heading, content)
		switch {
		case heading.Level == 1 && firstH1 == "":
			firstH1 = headingText
		case heading.Level == 2 && firstH2 == "":
			firstH2 = headingText
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, headingInfo{level: heading.Level, text: headingText})

		starts = append(starts, headingStart{
			offset: lineStart(content, heading.Lines().At(0).Start),
			path:   buildHeadingPath(stack),
		})
	}

	if firstH1 != "" {
		return starts, firstH1
	}
	return starts, firstH2
}

func lineStart(content []byte, pos int) int {
	for pos > 0 && content[pos-1] != '\n' {
		pos--
	}
	return pos
}

// buildHeadingPath formats the stack as "# Heading1 > ## Heading2".
func buildHeadingPath(stack []headingInfo) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var sb strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(content))
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String())
}
