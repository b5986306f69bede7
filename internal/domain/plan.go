package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	m "pydock.dev/pkg/pydock/internal/model"
)

// Plan computes both artifacts in memory and displays how they differ from
// the files currently on disk. Nothing is written.
func (w *workflow) Plan(ctx context.Context, args GenerateArgs) error {
	outputDir := args.outputDir()
	manifestPath := w.fsAdapter.JoinPath(ctx, string(outputDir), ManifestFileName)
	descriptorPath := w.fsAdapter.JoinPath(ctx, string(outputDir), DescriptorFileName)

	if err := validateGenerateArgs(ctx, w.fsAdapter, args); err != nil {
		slog.Error("Invalid input", "error", err)
		return err
	}

	currentManifest, manifestPresent, err := w.readOptional(ctx, manifestPath)
	if err != nil {
		return err
	}

	wantManifest := currentManifest

	if args.Mode == m.ManifestRegenerate {
		entryPath := w.fsAdapter.JoinPath(ctx, string(args.SourceDir), string(args.EntryFile))

		modules, err := w.extractFile(ctx, entryPath)
		if err != nil {
			return err
		}

		index, err := w.index.Index(ctx, args.RuntimeVersion)
		if err != nil {
			slog.Error("Failed to load standard library index", "version", args.RuntimeVersion, "error", err)
			return fmt.Errorf("classify imports: %w", err)
		}

		wantManifest = RenderManifest(Classify(modules, index))
		// An empty manifest is never written.
		manifestPresent = len(wantManifest) > 0
	}

	params, err := w.buildParameters(ctx, args, manifestPresent)
	if err != nil {
		return err
	}

	currentDescriptor, _, err := w.readOptional(ctx, descriptorPath)
	if err != nil {
		return err
	}

	manifestDiff, err := artifactDiff(manifestPath, currentManifest, wantManifest)
	if err != nil {
		return err
	}

	descriptorDiff, err := artifactDiff(descriptorPath, currentDescriptor, []byte(RenderDescriptor(params).Text()))
	if err != nil {
		return err
	}

	return w.ui.DisplayPlan(ctx, []m.ArtifactDiff{manifestDiff, descriptorDiff})
}

// readOptional loads path, reporting a missing file as absent rather than failing.
func (w *workflow) readOptional(ctx context.Context, path m.Path) ([]byte, bool, error) {
	content, err := w.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	return content, true, nil
}

func artifactDiff(path m.Path, current, want []byte) (m.ArtifactDiff, error) {
	diff := m.ArtifactDiff{Path: path, Removed: len(current) > 0 && len(want) == 0}

	if string(current) == string(want) {
		return diff, nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(current),
		B:        splitLines(want),
		FromFile: string(path),
		ToFile:   string(path),
		Context:  3,
	})
	if err != nil {
		return m.ArtifactDiff{}, fmt.Errorf("diff %s: %w", path, err)
	}

	diff.Diff = text

	return diff, nil
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	return difflib.SplitLines(strings.TrimSuffix(string(content), "\n"))
}
