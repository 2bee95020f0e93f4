package extract

import (
	"fmt"
	"os"
	"unicode/utf8"
)

func extractText(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return Document{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedFormat, path)
	}

	raw := string(data)
	return Document{RawText: raw, Sections: paragraphSections(raw)}, nil
}
