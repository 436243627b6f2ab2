package ops

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hpungsan/nbtidy/internal/errors"
	"github.com/hpungsan/nbtidy/internal/notebook"
)

// Discover returns all notebook files under root, recursively, in sorted
// order. Jupyter checkpoint copies are excluded.
func Discover(root string) ([]string, error) {
	pattern := filepath.Join(root, "**", "*"+notebook.Extension)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.NewInvalidRequest("invalid root pattern: " + err.Error())
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if isCheckpointPath(m) {
			continue
		}
		paths = append(paths, m)
	}
	sort.Strings(paths)
	return paths, nil
}

// isCheckpointPath reports whether any path segment is the Jupyter
// autosave directory.
func isCheckpointPath(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == notebook.CheckpointDir {
			return true
		}
	}
	return false
}
