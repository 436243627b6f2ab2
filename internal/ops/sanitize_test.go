package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/nbtidy/internal/config"
	"github.com/hpungsan/nbtidy/internal/errors"
)

const messyNotebook = `{
	"nbformat": 3,
	"metadata": {},
	"cells": [
		{"cell_type": "code", "id": 0, "source": ["print(1)\n"], "metadata": {},
		 "outputs": [{"output_type": "stream", "name": "stdout", "text": ["1\n"], "metadata": {}}],
		 "execution_count": "2"}
	]
}`

// writeFile creates a file with parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// cleanNotebook returns notebook content the sanitizer will not touch,
// built by sanitizing the messy fixture once.
func cleanNotebook(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.ipynb")
	writeFile(t, path, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.NoError(t, err)
	require.Len(t, out.Modified, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ipynb"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "b.ipynb"), "{}")
	writeFile(t, filepath.Join(dir, "sub", ".ipynb_checkpoints", "b-checkpoint.ipynb"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a notebook")

	paths, err := Discover(dir)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.ipynb"), paths[0])
	assert.Equal(t, filepath.Join(dir, "sub", "b.ipynb"), paths[1])
}

func TestDiscoverEmptyTree(t *testing.T) {
	paths, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSanitizeNoNotebooks(t *testing.T) {
	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Checked)
	assert.False(t, out.Changed())
	assert.Empty(t, out.Modified)
}

func TestSanitizeRewritesOnlyChangedFiles(t *testing.T) {
	dir := t.TempDir()
	cleanPath := filepath.Join(dir, "clean.ipynb")
	messyPath := filepath.Join(dir, "messy.ipynb")
	clean := cleanNotebook(t)
	writeFile(t, cleanPath, clean)
	writeFile(t, messyPath, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Checked)
	assert.Equal(t, []string{messyPath}, out.Modified)
	assert.True(t, out.Changed())

	// the clean file's bytes are untouched
	data, err := os.ReadFile(cleanPath)
	require.NoError(t, err)
	assert.Equal(t, clean, string(data))

	// the messy file now passes a second run without changes
	again, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.NoError(t, err)
	assert.False(t, again.Changed())
}

func TestSanitizeDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messy.ipynb")
	writeFile(t, path, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, []string{path}, out.Modified)
	assert.True(t, out.DryRun)

	// nothing was written
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, messyNotebook, string(data))
}

func TestSanitizeStripOutputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nb.ipynb")
	writeFile(t, path, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir, StripOutputs: true})
	require.NoError(t, err)
	require.True(t, out.Changed())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outputs": []`)
	assert.Contains(t, string(data), `"execution_count": null`)
	assert.NotContains(t, string(data), "stdout")
}

func TestSanitizeAbortsOnFirstParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aaa_broken.ipynb"), "{not json")
	messyPath := filepath.Join(dir, "zzz_messy.ipynb")
	writeFile(t, messyPath, messyNotebook)

	_, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse), "err = %v", err)

	// the later file was never reached
	data, readErr := os.ReadFile(messyPath)
	require.NoError(t, readErr)
	assert.Equal(t, messyNotebook, string(data))
}

func TestSanitizeNotANotebook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "list.ipynb"), `[1, 2, 3]`)

	_, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotANotebook), "err = %v", err)
}

func TestSanitizeKeepGoing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aaa_broken.ipynb"), "{not json")
	messyPath := filepath.Join(dir, "zzz_messy.ipynb")
	writeFile(t, messyPath, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir, KeepGoing: true})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Checked)
	assert.Equal(t, []string{messyPath}, out.Modified)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "aaa_broken.ipynb"), out.Failures[0].Path)
}

func TestSanitizeSkipsCheckpoints(t *testing.T) {
	dir := t.TempDir()
	ckptPath := filepath.Join(dir, ".ipynb_checkpoints", "nb-checkpoint.ipynb")
	writeFile(t, ckptPath, messyNotebook)

	out, err := Sanitize(config.DefaultConfig(), SanitizeInput{Root: dir})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Checked)
	data, err := os.ReadFile(ckptPath)
	require.NoError(t, err)
	assert.Equal(t, messyNotebook, string(data))
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
