// Package adapter contains infrastructure adapters for the pydock CLI.
package adapter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	m "pydock.dev/pkg/pydock/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when reading sources and writing artifacts. It hides direct `os`
// access so the workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Exists reports whether anything is present at path.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// Remove deletes a single file. A missing file is not an error.
	Remove(ctx context.Context, path m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - path is the user's own entry file
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// Exists reports whether path exists.
func (a *LocalSourceFSAdapter) Exists(ctx context.Context, path m.Path) (bool, error) {
	if _, err := a.FileInfo(ctx, path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// Remove deletes the file at path, ignoring a missing file.
func (a *LocalSourceFSAdapter) Remove(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(string(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(ctx context.Context, base, target m.Path) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(string(base))
	if err != nil {
		return "", err
	}

	absTarget, err := filepath.Abs(string(target))
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
