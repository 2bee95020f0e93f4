package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns one section per page with text. The PDF reader panics on
// some malformed files, so panics are turned into errors.
func extractPDF(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var sections []Section
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Document{}, fmt.Errorf("failed to read page %d of %s: %w", i, path, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			sections = append(sections, Section{Text: text, Label: "page " + strconv.Itoa(i)})
		}
	}

	return Document{RawText: joinSections(sections), Sections: sections}, nil
}
