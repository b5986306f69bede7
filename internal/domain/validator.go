package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"pydock.dev/pkg/pydock/internal/adapter"
	m "pydock.dev/pkg/pydock/internal/model"
)

// validateGenerateArgs checks the user's input before any file is read or
// written, collecting every problem into a single *m.ValidationError.
func validateGenerateArgs(ctx context.Context, fsAdapter adapter.SourceFSAdapter, args GenerateArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var problems []string

	if args.SourceDir == "" {
		problems = append(problems, "must enter a source directory")
	} else if problem := checkPath(ctx, fsAdapter, args.SourceDir, true); problem != "" {
		problems = append(problems, "source directory "+problem)
	}

	if args.EntryFile == "" {
		problems = append(problems, "must enter a Python source file")
	} else {
		entryPath := fsAdapter.JoinPath(ctx, string(args.SourceDir), string(args.EntryFile))
		if problem := checkPath(ctx, fsAdapter, entryPath, false); problem != "" {
			problems = append(problems, "source file "+problem)
		}
	}

	if args.Mode == m.ManifestReuse {
		manifestPath := fsAdapter.JoinPath(ctx, string(args.outputDir()), ManifestFileName)

		exists, err := fsAdapter.Exists(ctx, manifestPath)
		if err != nil || !exists {
			problems = append(problems, fmt.Sprintf(
				"make sure %s exists or regenerate it from the source file", manifestPath))
		}
	}

	if len(problems) > 0 {
		return &m.ValidationError{Problems: problems}
	}

	return nil
}

// checkPath returns a human-readable problem, or "" when path has the wanted type.
func checkPath(ctx context.Context, fsAdapter adapter.SourceFSAdapter, path m.Path, wantDir bool) string {
	info, err := fsAdapter.FileInfo(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return fmt.Sprintf("<%s> does not exist", path)
		}

		return fmt.Sprintf("<%s> cannot be read: %v", path, err)
	}

	if wantDir && !info.IsDir() {
		return fmt.Sprintf("<%s> is not a directory", path)
	}

	if !wantDir && !info.Mode().IsRegular() {
		return fmt.Sprintf("<%s> is not a regular file", path)
	}

	return ""
}
