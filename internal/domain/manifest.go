package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pydock.dev/pkg/pydock/internal/adapter"
	m "pydock.dev/pkg/pydock/internal/model"
)

// ManifestFileName is the dependency manifest written next to the descriptor.
const ManifestFileName = "requirements.txt"

// ManifestSynthesizer writes and reads the dependency manifest.
type ManifestSynthesizer interface {
	// Write replaces the manifest at path with deps. An empty list leaves no file.
	Write(ctx context.Context, path m.Path, deps m.DependencyList) error
	// Read loads the module names listed in the manifest at path.
	Read(ctx context.Context, path m.Path) (m.DependencyList, error)
}

type manifestSynthesizer struct {
	fsAdapter adapter.SourceFSAdapter
}

// NewManifestSynthesizer constructs a ManifestSynthesizer backed by fsAdapter.
func NewManifestSynthesizer(fsAdapter adapter.SourceFSAdapter) ManifestSynthesizer {
	return &manifestSynthesizer{fsAdapter: fsAdapter}
}

func (ms *manifestSynthesizer) Write(ctx context.Context, path m.Path, deps m.DependencyList) error {
	if err := ms.fsAdapter.Remove(ctx, path); err != nil {
		slog.Error("Failed to remove old manifest", "path", path, "error", err)
		return fmt.Errorf("remove manifest: %w", err)
	}

	if len(deps) == 0 {
		slog.Debug("No external dependencies, manifest left absent", "path", path)
		return nil
	}

	if err := ms.fsAdapter.WriteFile(ctx, path, RenderManifest(deps), 0o644); err != nil {
		slog.Error("Failed to write manifest", "path", path, "error", err)
		return fmt.Errorf("write manifest: %w", err)
	}

	slog.Debug("Wrote manifest", "path", path, "dependencies", len(deps))

	return nil
}

func (ms *manifestSynthesizer) Read(ctx context.Context, path m.Path) (m.DependencyList, error) {
	content, err := ms.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return ParseManifest(content), nil
}

// RenderManifest returns the manifest content for deps: one name per line.
func RenderManifest(deps m.DependencyList) []byte {
	var b strings.Builder

	for _, dep := range deps {
		b.WriteString(dep)
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// ParseManifest lists the non-blank lines of a manifest.
func ParseManifest(content []byte) m.DependencyList {
	deps := m.DependencyList{}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		deps = append(deps, line)
	}

	return deps
}
