package ops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/nbtidy/internal/config"
	"github.com/hpungsan/nbtidy/internal/errors"
	"github.com/hpungsan/nbtidy/internal/nbjson"
	"github.com/hpungsan/nbtidy/internal/notebook"
	"github.com/hpungsan/nbtidy/internal/preview"
)

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	Path   string // notebook to render
	Output string // optional, defaults to the notebook path with .html
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Cells  int    `json:"cells"`
}

// Preview renders one notebook to a standalone HTML file. The document is
// sanitized in memory first so the rendering sees the same structure a
// previewer would after a sanitize run; the notebook itself is not written.
func Preview(cfg *config.Config, input PreviewInput) (*PreviewOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(input.Path)
		}
		return nil, errors.NewReadError(input.Path, err)
	}

	doc, err := nbjson.Decode(data)
	if err != nil {
		if nbjson.IsNotObject(err) {
			return nil, errors.NewNotANotebook(input.Path)
		}
		return nil, errors.NewParseError(input.Path, err)
	}

	notebook.Sanitize(doc, notebook.Options{
		Language:          cfg.Language,
		KernelName:        cfg.KernelName,
		KernelDisplayName: cfg.KernelDisplayName,
	})

	title := strings.TrimSuffix(filepath.Base(input.Path), notebook.Extension)
	html, cells, err := preview.Render(title, doc)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	outPath := input.Output
	if outPath == "" {
		outPath = strings.TrimSuffix(input.Path, notebook.Extension) + ".html"
	}
	if err := os.WriteFile(outPath, html, 0644); err != nil {
		return nil, errors.NewWriteError(outPath, err)
	}

	return &PreviewOutput{Path: input.Path, Output: outPath, Cells: cells}, nil
}
