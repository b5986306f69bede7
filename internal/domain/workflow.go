package domain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"pydock.dev/pkg/pydock/internal/adapter"
	"pydock.dev/pkg/pydock/internal/controller"
	m "pydock.dev/pkg/pydock/internal/model"
)

// GenerateArgs contains the arguments for synthesizing the artifacts.
type GenerateArgs struct {
	SourceDir      m.Path
	EntryFile      m.Path // relative to SourceDir
	Args           []string
	Mode           m.ManifestMode
	OutputDir      m.Path // build context; artifacts are written here
	RuntimeVersion string
}

func (a GenerateArgs) outputDir() m.Path {
	if a.OutputDir == "" {
		return "."
	}

	return a.OutputDir
}

// RunArgs contains the arguments for generating, building and running an image.
type RunArgs struct {
	GenerateArgs
}

// DepsArgs contains the arguments for listing the imports of several files.
type DepsArgs struct {
	Paths          []m.Path
	RuntimeVersion string
	Threads        int
}

// Workflow is the top-level entry point of every pydock command.
type Workflow interface {
	Generate(ctx context.Context, args GenerateArgs) (m.Artifacts, error)
	Run(ctx context.Context, args RunArgs) error
	Deps(ctx context.Context, args DepsArgs) error
	Plan(ctx context.Context, args GenerateArgs) error
}

type workflow struct {
	fsAdapter  adapter.SourceFSAdapter
	index      adapter.StdlibIndexProvider
	runtime    adapter.ContainerRuntime
	ui         controller.UI
	manifest   ManifestSynthesizer
	descriptor DescriptorSynthesizer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	index adapter.StdlibIndexProvider,
	runtime adapter.ContainerRuntime,
	ui controller.UI,
) Workflow {
	return &workflow{
		fsAdapter:  fsAdapter,
		index:      index,
		runtime:    runtime,
		ui:         ui,
		manifest:   NewManifestSynthesizer(fsAdapter),
		descriptor: NewDescriptorSynthesizer(fsAdapter),
	}
}

// Generate validates the input, then writes the manifest (when regenerating)
// and the descriptor into the output directory.
func (w *workflow) Generate(ctx context.Context, args GenerateArgs) (m.Artifacts, error) {
	if err := w.ui.Start(ctx); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return m.Artifacts{}, err
	}

	artifacts, err := w.generate(ctx, args)

	w.ui.Close(ctx)

	if err != nil {
		return m.Artifacts{}, err
	}

	w.ui.DisplayArtifacts(ctx, artifacts)

	return artifacts, nil
}

// Run generates the artifacts, builds the image, runs it once and removes it.
// The image is removed even when the container exits with an error.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := w.ui.Start(ctx); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	artifacts, err := w.generate(ctx, args.GenerateArgs)
	if err != nil {
		w.ui.Close(ctx)
		return err
	}

	image := ImageName(args.EntryFile)

	w.ui.DisplayStageStarted(ctx, controller.StageBuild, image)
	err = w.runtime.Build(ctx, string(artifacts.DescriptorPath), string(args.outputDir()), image)
	w.ui.DisplayStageDone(ctx, controller.StageBuild, err)
	w.ui.Close(ctx)

	if err != nil {
		slog.Error("Failed to build image", "image", image, "error", err)
		return fmt.Errorf("build image: %w", err)
	}

	w.ui.DisplayStageStarted(ctx, controller.StageRun, string(args.EntryFile))
	output := writerOrDiscard(w.ui.Output())
	runErr := w.runtime.Run(ctx, image, output, output)
	w.ui.DisplayStageDone(ctx, controller.StageRun, runErr)

	if runErr != nil {
		slog.Error("Container exited with error", "image", image, "error", runErr)
	}

	w.ui.DisplayStageStarted(ctx, controller.StageRemove, image)
	removeErr := w.runtime.Remove(context.WithoutCancel(ctx), image)
	w.ui.DisplayStageDone(ctx, controller.StageRemove, removeErr)

	if removeErr != nil {
		slog.Warn("Failed to remove image", "image", image, "error", removeErr)
	}

	if runErr != nil {
		return fmt.Errorf("run container: %w", runErr)
	}

	return nil
}

func (w *workflow) generate(ctx context.Context, args GenerateArgs) (m.Artifacts, error) {
	outputDir := args.outputDir()
	artifacts := m.Artifacts{
		ManifestPath:   w.fsAdapter.JoinPath(ctx, string(outputDir), ManifestFileName),
		DescriptorPath: w.fsAdapter.JoinPath(ctx, string(outputDir), DescriptorFileName),
	}

	w.ui.DisplayStageStarted(ctx, controller.StageValidate, "")

	err := validateGenerateArgs(ctx, w.fsAdapter, args)
	w.ui.DisplayStageDone(ctx, controller.StageValidate, err)

	if err != nil {
		slog.Error("Invalid input", "error", err)
		return m.Artifacts{}, err
	}

	if args.Mode == m.ManifestRegenerate {
		deps, err := w.regenerateManifest(ctx, args, artifacts.ManifestPath)
		if err != nil {
			return m.Artifacts{}, err
		}

		artifacts.Dependencies = deps
	} else {
		deps, err := w.manifest.Read(ctx, artifacts.ManifestPath)
		if err != nil {
			slog.Error("Failed to read existing manifest", "path", artifacts.ManifestPath, "error", err)
			return m.Artifacts{}, err
		}

		artifacts.Dependencies = deps
	}

	exists, err := w.fsAdapter.Exists(ctx, artifacts.ManifestPath)
	if err != nil {
		return m.Artifacts{}, fmt.Errorf("check manifest: %w", err)
	}

	artifacts.ManifestExists = exists

	params, err := w.buildParameters(ctx, args, exists)
	if err != nil {
		return m.Artifacts{}, err
	}

	w.ui.DisplayStageStarted(ctx, controller.StageDescriptor, string(artifacts.DescriptorPath))
	err = w.descriptor.Write(ctx, artifacts.DescriptorPath, params)
	w.ui.DisplayStageDone(ctx, controller.StageDescriptor, err)

	if err != nil {
		return m.Artifacts{}, err
	}

	return artifacts, nil
}

func (w *workflow) regenerateManifest(ctx context.Context, args GenerateArgs, manifestPath m.Path) (m.DependencyList, error) {
	entryPath := w.fsAdapter.JoinPath(ctx, string(args.SourceDir), string(args.EntryFile))

	w.ui.DisplayStageStarted(ctx, controller.StageExtract, string(entryPath))

	modules, err := w.extractFile(ctx, entryPath)
	w.ui.DisplayStageDone(ctx, controller.StageExtract, err)

	if err != nil {
		return nil, err
	}

	w.ui.DisplayStageStarted(ctx, controller.StageClassify, "python "+args.RuntimeVersion)

	index, err := w.index.Index(ctx, args.RuntimeVersion)
	w.ui.DisplayStageDone(ctx, controller.StageClassify, err)

	if err != nil {
		slog.Error("Failed to load standard library index", "version", args.RuntimeVersion, "error", err)
		return nil, fmt.Errorf("classify imports: %w", err)
	}

	deps := Classify(modules, index)
	slog.Info("Classified imports", "file", entryPath, "modules", modules.Len(), "external", len(deps))

	w.ui.DisplayStageStarted(ctx, controller.StageManifest, string(manifestPath))
	err = w.manifest.Write(ctx, manifestPath, deps)
	w.ui.DisplayStageDone(ctx, controller.StageManifest, err)

	if err != nil {
		return nil, err
	}

	return deps, nil
}

func (w *workflow) extractFile(ctx context.Context, path m.Path) (m.ModuleSet, error) {
	content, err := w.fsAdapter.ReadFile(ctx, path)
	if err != nil {
		slog.Error("Failed to read source file", "path", path, "error", err)
		return m.ModuleSet{}, fmt.Errorf("read source file: %w", err)
	}

	return ExtractImports(string(content)), nil
}

func (w *workflow) buildParameters(ctx context.Context, args GenerateArgs, manifestPresent bool) (m.BuildParameters, error) {
	sourceDir, err := w.fsAdapter.RelPath(ctx, args.outputDir(), args.SourceDir)
	if err != nil {
		slog.Error("Failed to resolve source directory", "outputDir", args.outputDir(), "sourceDir", args.SourceDir, "error", err)
		return m.BuildParameters{}, fmt.Errorf("resolve source directory: %w", err)
	}

	return m.BuildParameters{
		SourceDir:       m.Path(filepath.ToSlash(string(sourceDir))),
		EntryFile:       m.Path(filepath.ToSlash(string(args.EntryFile))),
		Args:            args.Args,
		ManifestPresent: manifestPresent,
	}, nil
}

// ImageName derives the throwaway image tag from the entry file name.
func ImageName(entryFile m.Path) string {
	return strings.ToLower(filepath.Base(string(entryFile))) + "-image"
}

// writerOrDiscard keeps nil writers away from exec.
func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}
