// Package config loads smoledit's engine settings. The file format is
// chosen by extension: .yaml/.yml, .json, or .hcl. A missing config file is
// not an error; every field has a working default.
package config

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/smol-dev/smoledit/pkg/backup"
	"github.com/smol-dev/smoledit/pkg/diffview"
	"github.com/smol-dev/smoledit/pkg/fsutil"
)

// DefaultFile is the config file smoledit looks for in the repository root.
const DefaultFile = ".smoledit.yaml"

// Config is the engine and CLI configuration.
type Config struct {
	// Root overrides the repository root. Empty means the working directory.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	// BackupDir is where batch backups live, relative to the root.
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`

	// MaxFileSize is the post-mutation size ceiling in bytes.
	MaxFileSize int64 `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty"`

	// ContextLines is the diff context window around each changed region.
	ContextLines int `json:"context_lines,omitempty" yaml:"context_lines,omitempty"`

	// Protected lists doublestar globs of paths the engine refuses to edit,
	// e.g. ".git/**". The backup directory is always protected.
	Protected []string `json:"protected,omitempty" yaml:"protected,omitempty"`

	// AutoApprove skips the per-file approval prompt.
	AutoApprove bool `json:"auto_approve,omitempty" yaml:"auto_approve,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		BackupDir:    backup.DefaultDir,
		MaxFileSize:  fsutil.MaxFileSize,
		ContextLines: diffview.DefaultContextLines,
		Protected:    []string{".git/**", ".smoledit/**"},
	}
}

// applyDefaults fills zero-valued fields in a loaded config.
func (c *Config) applyDefaults() {
	def := Default()
	if c.BackupDir == "" {
		c.BackupDir = def.BackupDir
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.ContextLines == 0 {
		c.ContextLines = def.ContextLines
	}
	if c.Protected == nil {
		c.Protected = def.Protected
	}
}

// Validate checks the loaded configuration.
func Validate(ctx context.Context, cfg *Config) error {
	logger := zerolog.Ctx(ctx)

	if cfg.MaxFileSize < 0 {
		return errors.Errorf("max_file_size must not be negative, got %d", cfg.MaxFileSize)
	}
	if cfg.ContextLines < 0 {
		return errors.Errorf("context_lines must not be negative, got %d", cfg.ContextLines)
	}
	for _, pattern := range cfg.Protected {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid protected pattern %q", pattern)
		}
	}

	logger.Debug().
		Int64("max_file_size", cfg.MaxFileSize).
		Int("context_lines", cfg.ContextLines).
		Strs("protected", cfg.Protected).
		Msg("config validated")
	return nil
}
