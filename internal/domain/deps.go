package domain

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	m "pydock.dev/pkg/pydock/internal/model"
)

const defaultDepsThreads = 4

// Deps scans every path concurrently and displays each imported module with
// its classification. Results keep the order of args.Paths.
func (w *workflow) Deps(ctx context.Context, args DepsArgs) error {
	if len(args.Paths) == 0 {
		return &m.ValidationError{Problems: []string{"must enter at least one Python source file"}}
	}

	index, err := w.index.Index(ctx, args.RuntimeVersion)
	if err != nil {
		slog.Error("Failed to load standard library index", "version", args.RuntimeVersion, "error", err)
		return fmt.Errorf("classify imports: %w", err)
	}

	threads := args.Threads
	if threads <= 0 {
		threads = defaultDepsThreads
	}

	results := make([]m.FileDependencies, len(args.Paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, path := range args.Paths {
		group.Go(func() error {
			modules, err := w.extractFile(groupCtx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = m.FileDependencies{Path: path, Modules: Describe(modules, index)}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	return w.ui.DisplayDependencies(ctx, results)
}
