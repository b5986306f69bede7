package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ContainerRuntime abstracts the external container tool that builds and runs
// the generated descriptor.
type ContainerRuntime interface {
	// Build builds image from descriptorPath using contextDir as the build context.
	Build(ctx context.Context, descriptorPath, contextDir, image string) error

	// Run starts a throwaway container from image and streams its output.
	Run(ctx context.Context, image string, stdout, stderr io.Writer) error

	// Remove force-deletes image.
	Remove(ctx context.Context, image string) error
}

// LocalContainerRuntime shells out to a docker-compatible binary.
type LocalContainerRuntime struct {
	binary string
}

// NewLocalContainerRuntime constructs a LocalContainerRuntime for binary
// (e.g. "docker" or "podman").
func NewLocalContainerRuntime(binary string) *LocalContainerRuntime {
	if strings.TrimSpace(binary) == "" {
		binary = "docker"
	}

	return &LocalContainerRuntime{binary: binary}
}

// Binary returns the executable this runtime invokes.
func (a *LocalContainerRuntime) Binary() string {
	return a.binary
}

// Build runs `<binary> build -f <descriptor> -t <image> <context>`.
func (a *LocalContainerRuntime) Build(ctx context.Context, descriptorPath, contextDir, image string) error {
	return a.exec(ctx, nil, nil, "build", "-f", descriptorPath, "-t", image, contextDir)
}

// Run runs `<binary> run --rm <image>`.
func (a *LocalContainerRuntime) Run(ctx context.Context, image string, stdout, stderr io.Writer) error {
	return a.exec(ctx, stdout, stderr, "run", "--rm", image)
}

// Remove runs `<binary> image rm --force <image>`.
func (a *LocalContainerRuntime) Remove(ctx context.Context, image string) error {
	return a.exec(ctx, nil, nil, "image", "rm", "--force", image)
}

func (a *LocalContainerRuntime) exec(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	// #nosec G204 - binary comes from the user's own configuration
	cmd := exec.CommandContext(ctx, a.binary, args...)

	var captured bytes.Buffer

	cmd.Stdout = &captured
	cmd.Stderr = &captured

	if stdout != nil {
		cmd.Stdout = stdout
	}

	if stderr != nil {
		cmd.Stderr = stderr
	}

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(captured.String())
		if output == "" {
			return fmt.Errorf("%s %s: %w", a.binary, args[0], err)
		}

		return fmt.Errorf("%s %s: %w: %s", a.binary, args[0], err, output)
	}

	return nil
}
