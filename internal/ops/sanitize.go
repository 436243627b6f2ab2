package ops

import (
	"os"

	"github.com/hpungsan/nbtidy/internal/config"
	"github.com/hpungsan/nbtidy/internal/errors"
	"github.com/hpungsan/nbtidy/internal/nbjson"
	"github.com/hpungsan/nbtidy/internal/notebook"
)

// SanitizeInput contains parameters for the Sanitize operation.
type SanitizeInput struct {
	Root         string // defaults to "."
	StripOutputs bool
	KeepGoing    bool // record per-file failures instead of aborting
	DryRun       bool // report would-be changes, write nothing
}

// FileFailure is one file that could not be processed under keep-going.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// SanitizeOutput contains the result of the Sanitize operation.
type SanitizeOutput struct {
	Root     string        `json:"root"`
	Checked  int           `json:"checked"`
	Modified []string      `json:"modified"`
	Failures []FileFailure `json:"failures,omitempty"`
	DryRun   bool          `json:"dry_run,omitempty"`
}

// Changed reports whether any file was (or under dry run, would be) rewritten.
func (o *SanitizeOutput) Changed() bool {
	return len(o.Modified) > 0
}

// Sanitize discovers every notebook under the root and repairs each one in
// place, rewriting only files the normalizer actually changed. The first
// fatal error (unreadable file, invalid JSON, non-object top level) aborts
// the run unless KeepGoing is set.
func Sanitize(cfg *config.Config, input SanitizeInput) (*SanitizeOutput, error) {
	root := input.Root
	if root == "" {
		root = "."
	}

	paths, err := Discover(root)
	if err != nil {
		return nil, err
	}

	opts := notebook.Options{
		StripOutputs:      input.StripOutputs,
		Language:          cfg.Language,
		KernelName:        cfg.KernelName,
		KernelDisplayName: cfg.KernelDisplayName,
	}

	out := &SanitizeOutput{
		Root:     root,
		Modified: make([]string, 0),
		DryRun:   input.DryRun,
	}
	for _, path := range paths {
		out.Checked++
		changed, err := sanitizeFile(path, opts, input.DryRun)
		if err != nil {
			if input.KeepGoing {
				out.Failures = append(out.Failures, FileFailure{Path: path, Error: err.Error()})
				continue
			}
			return nil, err
		}
		if changed {
			out.Modified = append(out.Modified, path)
		}
	}
	return out, nil
}

// sanitizeFile runs the normalizer over one notebook. The write is a
// single full-content replace; an untouched file is never rewritten.
func sanitizeFile(path string, opts notebook.Options, dryRun bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.NewReadError(path, err)
	}

	doc, err := nbjson.Decode(data)
	if err != nil {
		if nbjson.IsNotObject(err) {
			return false, errors.NewNotANotebook(path)
		}
		return false, errors.NewParseError(path, err)
	}

	changed := notebook.Sanitize(doc, opts)
	if !changed || dryRun {
		return changed, nil
	}

	encoded, err := nbjson.Encode(doc)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return false, errors.NewWriteError(path, err)
	}
	return true, nil
}
