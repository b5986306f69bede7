package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pydock.dev/pkg/pydock/internal/adapter"
	m "pydock.dev/pkg/pydock/internal/model"
)

// Fixed container settings. They are not user-controlled.
const (
	DescriptorFileName = "Dockerfile"
	BaseImage          = "python:3.5"
	ContainerWorkDir   = "/project"
	RuntimeExecutable  = "python"
	InstallCommand     = "pip3 install -r"
)

// DescriptorSynthesizer writes the container build descriptor.
type DescriptorSynthesizer interface {
	// Write replaces the descriptor at path with the one built from params.
	Write(ctx context.Context, path m.Path, params m.BuildParameters) error
}

type descriptorSynthesizer struct {
	fsAdapter adapter.SourceFSAdapter
}

// NewDescriptorSynthesizer constructs a DescriptorSynthesizer backed by fsAdapter.
func NewDescriptorSynthesizer(fsAdapter adapter.SourceFSAdapter) DescriptorSynthesizer {
	return &descriptorSynthesizer{fsAdapter: fsAdapter}
}

func (ds *descriptorSynthesizer) Write(ctx context.Context, path m.Path, params m.BuildParameters) error {
	if err := ds.fsAdapter.Remove(ctx, path); err != nil {
		slog.Error("Failed to remove old descriptor", "path", path, "error", err)
		return fmt.Errorf("remove descriptor: %w", err)
	}

	descriptor := RenderDescriptor(params)
	if err := ds.fsAdapter.WriteFile(ctx, path, []byte(descriptor.Text()), 0o644); err != nil {
		slog.Error("Failed to write descriptor", "path", path, "error", err)
		return fmt.Errorf("write descriptor: %w", err)
	}

	slog.Debug("Wrote descriptor", "path", path, "directives", len(descriptor.Directives))

	return nil
}

// RenderDescriptor builds the directive list for params. The output is
// byte-for-byte stable for equal params.
func RenderDescriptor(params m.BuildParameters) m.BuildDescriptor {
	directives := []string{
		"FROM " + BaseImage,
		"WORKDIR " + ContainerWorkDir + " ",
	}

	if params.ManifestPresent {
		directives = append(directives,
			"COPY "+ManifestFileName+" . ",
			"RUN "+InstallCommand+" "+ManifestFileName,
		)
	}

	directives = append(directives,
		"COPY "+string(params.SourceDir)+"/ . ",
		runDirective(params),
	)

	return m.BuildDescriptor{Directives: directives}
}

func runDirective(params m.BuildParameters) string {
	var b strings.Builder

	fmt.Fprintf(&b, `CMD [ "%s", "./%s"`, RuntimeExecutable, params.EntryFile)

	for _, arg := range params.Args {
		fmt.Fprintf(&b, `, "%s"`, strings.TrimSpace(arg))
	}

	b.WriteString(" ]")

	return b.String()
}
