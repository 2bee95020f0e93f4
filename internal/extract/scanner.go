package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile is a supported document found under a root directory.
type ScannedFile struct {
	RelPath string // slash-separated path relative to the root
	AbsPath string
	Format  string
}

// Scan walks root and returns every file Extract can handle, in lexical order.
// Hidden directories are skipped. A root that is not a directory returns
// ErrFileNotFound.
func Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrFileNotFound, root)
	}

	var files []ScannedFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		format, err := FormatOf(path)
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
			Format:  format,
		})
		return nil
	})
	if err != nil {
		return files, err
	}

	return files, nil
}
