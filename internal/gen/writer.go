package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes generated files into their directories, creating the
// directories when needed. Files whose content is already up to date are
// left untouched so their modification time does not change. It returns the
// paths that were written.
func WriteFiles(files []*GeneratedFile) ([]string, error) {
	var written []string

	for _, file := range files {
		outputPath := file.Path()

		current, err := os.ReadFile(outputPath)
		if err == nil && bytes.Equal(current, file.Content) {
			continue
		}

		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}

		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", outputPath, err)
		}

		removeDebugUnformatted(file.Dir, file.Filename)

		written = append(written, outputPath)
	}

	return written, nil
}

// StaleFiles returns the paths of files whose on-disk content differs from
// the generated content, including files that do not exist yet.
func StaleFiles(files []*GeneratedFile) ([]string, error) {
	var stale []string

	for _, file := range files {
		current, err := os.ReadFile(file.Path())

		switch {
		case errors.Is(err, fs.ErrNotExist):
			stale = append(stale, file.Path())
		case err != nil:
			return nil, fmt.Errorf("reading file %s: %w", file.Path(), err)
		case !bytes.Equal(current, file.Content):
			stale = append(stale, file.Path())
		}
	}

	return stale, nil
}
