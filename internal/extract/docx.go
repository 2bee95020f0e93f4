package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

func extractDocx(path string) (Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open docx %s: %w", path, err)
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Document{}, fmt.Errorf("failed to open %s in %s: %w", docxBody, path, err)
		}
		defer func() {
			_ = rc.Close()
		}()

		sections, err := parseDocxBody(rc)
		if err != nil {
			return Document{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return Document{RawText: joinSections(sections), Sections: sections}, nil
	}

	return Document{}, fmt.Errorf("%w: %s has no %s", ErrUnsupportedFormat, path, docxBody)
}

// parseDocxBody reads WordprocessingML and returns one section per non-empty
// body paragraph and one per table row (cell texts joined by a space), in
// document order.
func parseDocxBody(r io.Reader) ([]Section, error) {
	dec := xml.NewDecoder(r)

	var (
		sections  []Section
		para      strings.Builder
		cells     []string
		cell      strings.Builder
		tableDeep int
		inText    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDeep++
			case "tr":
				cells = cells[:0]
			case "tc":
				cell.Reset()
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				if tableDeep > 0 {
					if text != "" {
						if cell.Len() > 0 {
							cell.WriteByte(' ')
						}
						cell.WriteString(text)
					}
				} else if text != "" {
					sections = append(sections, Section{Text: text})
				}
				para.Reset()
			case "tc":
				if c := strings.TrimSpace(cell.String()); c != "" {
					cells = append(cells, c)
				}
			case "tr":
				if row := strings.Join(cells, " "); row != "" {
					sections = append(sections, Section{Text: row, Label: "table"})
				}
			case "tbl":
				tableDeep--
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return sections, nil
}

func joinSections(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n\n")
}
