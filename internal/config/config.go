package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// Language fills language_info.name when it is missing or wrong-typed.
	Language string `json:"language,omitempty"`

	// KernelName and KernelDisplayName fill missing kernelspec fields.
	KernelName        string `json:"kernel_name,omitempty"`
	KernelDisplayName string `json:"kernel_display_name,omitempty"`

	// StripOutputs makes strip mode the default for sanitize runs.
	StripOutputs bool `json:"strip_outputs,omitempty"`

	// KeepGoing records per-file fatal errors and continues instead of
	// aborting the whole run on the first bad file.
	KeepGoing bool `json:"keep_going,omitempty"`

	// HistoryLimit is the default number of runs shown by history.
	HistoryLimit int `json:"history_limit,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Language:          "python",
		KernelName:        "python3",
		KernelDisplayName: "Python 3",
		HistoryLimit:      20,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.nbtidy.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars when non-zero; booleans OR.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Language = overlay.Language
	if result.Language == "" {
		result.Language = base.Language
	}
	result.KernelName = overlay.KernelName
	if result.KernelName == "" {
		result.KernelName = base.KernelName
	}
	result.KernelDisplayName = overlay.KernelDisplayName
	if result.KernelDisplayName == "" {
		result.KernelDisplayName = base.KernelDisplayName
	}
	result.HistoryLimit = overlay.HistoryLimit
	if result.HistoryLimit == 0 {
		result.HistoryLimit = base.HistoryLimit
	}

	result.StripOutputs = base.StripOutputs || overlay.StripOutputs
	result.KeepGoing = base.KeepGoing || overlay.KeepGoing

	return result
}
