// Package artifact persists textual stage outputs under a per-run directory.
// Writes are best-effort from the pipeline's point of view: stages log a
// failed write and carry on.
package artifact

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store writes run artifacts below a single run directory. The filesystem is
// abstracted so tests can run against an in-memory one.
type Store struct {
	fs     afero.Fs
	runDir string
}

// Option configures a Store.
type Option func(*Store)

// WithFs replaces the backing filesystem (default: the OS filesystem).
func WithFs(fs afero.Fs) Option {
	return func(s *Store) { s.fs = fs }
}

// NewStore creates a store rooted at runDir, creating the directory if
// needed.
func NewStore(runDir string, opts ...Option) (*Store, error) {
	s := &Store{fs: afero.NewOsFs(), runDir: runDir}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.fs.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return s, nil
}

// RunDir returns the run directory the store is rooted at.
func (s *Store) RunDir() string { return s.runDir }

// Write stores content under the given path relative to the run directory,
// creating intermediate directories as needed.
func (s *Store) Write(relPath, content string) error {
	full := filepath.Join(s.runDir, relPath)
	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", relPath, err)
	}
	return nil
}

// Read returns the content stored under the given relative path.
func (s *Store) Read(relPath string) (string, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.runDir, relPath))
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", relPath, err)
	}
	return string(data), nil
}

// Exists reports whether an artifact is present under the relative path.
func (s *Store) Exists(relPath string) bool {
	ok, err := afero.Exists(s.fs, filepath.Join(s.runDir, relPath))
	return err == nil && ok
}

// StageOutputPath names the artifact for one stage execution:
// {stage}_iteration_{n}.txt.
func StageOutputPath(stage string, iteration int) string {
	return fmt.Sprintf("%s_iteration_%d.txt", stage, iteration)
}

// WriteStageOutput stores a stage's textual output for the given iteration.
func (s *Store) WriteStageOutput(stage string, iteration int, content string) error {
	return s.Write(StageOutputPath(stage, iteration), content)
}
