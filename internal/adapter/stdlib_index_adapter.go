package adapter

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	m "pydock.dev/pkg/pydock/internal/model"
)

//go:embed stdlib/*.txt
var embeddedStdlib embed.FS

// StdlibIndexProvider resolves the standard library index of a runtime version.
type StdlibIndexProvider interface {
	// Index returns the index for version or an error wrapping m.ErrIndexUnavailable.
	Index(ctx context.Context, version string) (m.StdlibIndex, error)
}

// stdlibOverride is the layout of a user-supplied index file:
//
//	versions:
//	  "3.5": [os, sys]
type stdlibOverride struct {
	Versions map[string][]string `yaml:"versions"`
}

// LocalStdlibIndexAdapter serves the indexes bundled with pydock, optionally
// overlaid by a YAML file.
type LocalStdlibIndexAdapter struct {
	overridePath string
}

// NewLocalStdlibIndexAdapter constructs a provider. overridePath may be empty.
func NewLocalStdlibIndexAdapter(overridePath string) *LocalStdlibIndexAdapter {
	return &LocalStdlibIndexAdapter{overridePath: strings.TrimSpace(overridePath)}
}

// Index looks version up in the override file first, then in the bundled lists.
func (a *LocalStdlibIndexAdapter) Index(ctx context.Context, version string) (m.StdlibIndex, error) {
	if err := ctx.Err(); err != nil {
		return m.StdlibIndex{}, err
	}

	version = strings.TrimSpace(version)
	if version == "" {
		return m.StdlibIndex{}, fmt.Errorf("%w: no runtime version given", m.ErrIndexUnavailable)
	}

	if a.overridePath != "" {
		names, found, err := a.loadOverride(version)
		if err != nil {
			return m.StdlibIndex{}, err
		}

		if found {
			slog.Debug("Using standard library index override", "path", a.overridePath, "version", version, "modules", len(names))
			return m.NewStdlibIndex(version, names), nil
		}
	}

	raw, err := embeddedStdlib.ReadFile(path.Join("stdlib", version+".txt"))
	if err != nil {
		slog.Error("No bundled standard library index", "version", version, "available", BundledStdlibVersions())
		return m.StdlibIndex{}, fmt.Errorf("%w: no index for runtime %s (bundled: %s)",
			m.ErrIndexUnavailable, version, strings.Join(BundledStdlibVersions(), ", "))
	}

	return m.NewStdlibIndex(version, parseIndexLines(string(raw))), nil
}

func (a *LocalStdlibIndexAdapter) loadOverride(version string) ([]string, bool, error) {
	// #nosec G304 - override path comes from the user's own configuration
	raw, err := os.ReadFile(a.overridePath)
	if err != nil {
		slog.Error("Failed to read standard library index override", "path", a.overridePath, "error", err)
		return nil, false, fmt.Errorf("%w: read %s: %w", m.ErrIndexUnavailable, a.overridePath, err)
	}

	var override stdlibOverride
	if err := yaml.Unmarshal(raw, &override); err != nil {
		slog.Error("Failed to parse standard library index override", "path", a.overridePath, "error", err)
		return nil, false, fmt.Errorf("%w: parse %s: %w", m.ErrIndexUnavailable, a.overridePath, err)
	}

	names, ok := override.Versions[version]

	return names, ok, nil
}

// BundledStdlibVersions lists the runtime versions shipped with the binary.
func BundledStdlibVersions() []string {
	entries, err := fs.ReadDir(embeddedStdlib, "stdlib")
	if err != nil {
		return nil
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		versions = append(versions, strings.TrimSuffix(entry.Name(), ".txt"))
	}

	sort.Strings(versions)

	return versions
}

func parseIndexLines(raw string) []string {
	var names []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		names = append(names, line)
	}

	return names
}
