package domain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydock.dev/pkg/pydock/internal/adapter"
	"pydock.dev/pkg/pydock/internal/controller"
	m "pydock.dev/pkg/pydock/internal/model"
)

const sampleSource = `#!/usr/bin/env python3
import os, sys
import requests
from flask import Flask
import numpy as np
import xml.etree.ElementTree as ET

print("ready")
`

// fakeRuntime records container runtime calls and fails on demand.
type fakeRuntime struct {
	calls     []string
	buildErr  error
	runErr    error
	removeErr error
}

func (f *fakeRuntime) Build(_ context.Context, descriptorPath, contextDir, image string) error {
	f.calls = append(f.calls, "build "+descriptorPath+" "+contextDir+" "+image)
	return f.buildErr
}

func (f *fakeRuntime) Run(_ context.Context, image string, stdout, _ io.Writer) error {
	f.calls = append(f.calls, "run "+image)
	_, _ = io.WriteString(stdout, "container output\n")

	return f.runErr
}

func (f *fakeRuntime) Remove(_ context.Context, image string) error {
	f.calls = append(f.calls, "remove "+image)
	return f.removeErr
}

type projectFixture struct {
	root      string
	sourceDir string
}

func newProject(t *testing.T, source string) projectFixture {
	t.Helper()

	root := t.TempDir()
	sourceDir := filepath.Join(root, "app")
	require.NoError(t, os.Mkdir(sourceDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "main.py"), []byte(source), 0o644))

	return projectFixture{root: root, sourceDir: sourceDir}
}

func (p projectFixture) generateArgs(mode m.ManifestMode, args ...string) GenerateArgs {
	return GenerateArgs{
		SourceDir:      m.Path(p.sourceDir),
		EntryFile:      "main.py",
		Args:           args,
		Mode:           mode,
		OutputDir:      m.Path(p.root),
		RuntimeVersion: "3.5",
	}
}

func (p projectFixture) read(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(p.root, name))
	require.NoError(t, err)

	return string(content)
}

func (p projectFixture) exists(name string) bool {
	_, err := os.Stat(filepath.Join(p.root, name))
	return err == nil
}

func newTestWorkflow(t *testing.T, runtime adapter.ContainerRuntime, indexProvider adapter.StdlibIndexProvider) (Workflow, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	if runtime == nil {
		runtime = &fakeRuntime{}
	}

	if indexProvider == nil {
		indexProvider = adapter.NewLocalStdlibIndexAdapter("")
	}

	return NewWorkflow(adapter.NewLocalSourceFSAdapter(), indexProvider, runtime, controller.NewSimpleUI(cmd)), out
}

func TestWorkflow_Generate_Regenerate(t *testing.T) {
	project := newProject(t, sampleSource)
	wf, out := newTestWorkflow(t, nil, nil)

	artifacts, err := wf.Generate(context.Background(), project.generateArgs(m.ManifestRegenerate, "-a", "1"))
	require.NoError(t, err)

	assert.Equal(t, m.DependencyList{"requests", "flask", "numpy"}, artifacts.Dependencies)
	assert.True(t, artifacts.ManifestExists)
	assert.Equal(t, "requests\nflask\nnumpy\n", project.read(t, ManifestFileName))

	want := "FROM python:3.5\n\n" +
		"WORKDIR /project \n\n" +
		"COPY requirements.txt . \n\n" +
		"RUN pip3 install -r requirements.txt\n\n" +
		"COPY app/ . \n\n" +
		"CMD [ \"python\", \"./main.py\", \"-a\", \"1\" ]\n"
	assert.Equal(t, want, project.read(t, DescriptorFileName))

	assert.Contains(t, out.String(), "==> extract")
	assert.Contains(t, out.String(), "3 dependencies")
}

func TestWorkflow_Generate_NoExternalDependencies(t *testing.T) {
	project := newProject(t, "import os\nimport sys\n")
	require.NoError(t, os.WriteFile(filepath.Join(project.root, ManifestFileName), []byte("stale\n"), 0o644))

	wf, out := newTestWorkflow(t, nil, nil)

	artifacts, err := wf.Generate(context.Background(), project.generateArgs(m.ManifestRegenerate))
	require.NoError(t, err)

	assert.False(t, artifacts.ManifestExists)
	assert.False(t, project.exists(ManifestFileName), "manifest must be absent when nothing is external")
	assert.NotContains(t, project.read(t, DescriptorFileName), "pip3")
	assert.Contains(t, out.String(), "no external dependencies")
}

func TestWorkflow_Generate_Idempotent(t *testing.T) {
	project := newProject(t, sampleSource)
	wf, _ := newTestWorkflow(t, nil, nil)
	args := project.generateArgs(m.ManifestRegenerate, "--verbose")

	_, err := wf.Generate(context.Background(), args)
	require.NoError(t, err)

	firstManifest := project.read(t, ManifestFileName)
	firstDescriptor := project.read(t, DescriptorFileName)

	_, err = wf.Generate(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, firstManifest, project.read(t, ManifestFileName))
	assert.Equal(t, firstDescriptor, project.read(t, DescriptorFileName))
}

func TestWorkflow_Generate_ReuseKeepsManifest(t *testing.T) {
	project := newProject(t, sampleSource)
	manifest := "pinned==1.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(project.root, ManifestFileName), []byte(manifest), 0o644))

	wf, _ := newTestWorkflow(t, nil, nil)

	artifacts, err := wf.Generate(context.Background(), project.generateArgs(m.ManifestReuse))
	require.NoError(t, err)

	assert.Equal(t, m.DependencyList{"pinned==1.0"}, artifacts.Dependencies)
	assert.Equal(t, manifest, project.read(t, ManifestFileName))
	assert.Contains(t, project.read(t, DescriptorFileName), "RUN pip3 install -r requirements.txt")
}

func TestWorkflow_Generate_ReuseWithoutManifest(t *testing.T) {
	project := newProject(t, sampleSource)
	wf, _ := newTestWorkflow(t, nil, nil)

	_, err := wf.Generate(context.Background(), project.generateArgs(m.ManifestReuse))
	require.Error(t, err)
	assert.True(t, errors.Is(err, m.ErrValidation))
	assert.False(t, project.exists(DescriptorFileName), "nothing is written on validation failure")
}

func TestWorkflow_Generate_CollectsAllValidationProblems(t *testing.T) {
	root := t.TempDir()
	notADir := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	wf, _ := newTestWorkflow(t, nil, nil)

	_, err := wf.Generate(context.Background(), GenerateArgs{
		SourceDir:      m.Path(notADir),
		EntryFile:      "main.py",
		Mode:           m.ManifestReuse,
		OutputDir:      m.Path(root),
		RuntimeVersion: "3.5",
	})
	require.Error(t, err)

	var validationErr *m.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Problems, 3)
	assert.Contains(t, validationErr.Problems[0], "is not a directory")
	assert.Contains(t, validationErr.Problems[1], "does not exist")
	assert.Contains(t, validationErr.Problems[2], ManifestFileName)
}

func TestWorkflow_Generate_MissingArguments(t *testing.T) {
	wf, _ := newTestWorkflow(t, nil, nil)

	_, err := wf.Generate(context.Background(), GenerateArgs{Mode: m.ManifestRegenerate, OutputDir: m.Path(t.TempDir())})

	var validationErr *m.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"must enter a source directory", "must enter a Python source file"}, validationErr.Problems)
}

func TestWorkflow_Generate_EntryIsDirectory(t *testing.T) {
	project := newProject(t, sampleSource)
	require.NoError(t, os.Mkdir(filepath.Join(project.sourceDir, "pkg"), 0o755))

	wf, _ := newTestWorkflow(t, nil, nil)
	args := project.generateArgs(m.ManifestRegenerate)
	args.EntryFile = "pkg"

	_, err := wf.Generate(context.Background(), args)
	require.ErrorIs(t, err, m.ErrValidation)
	assert.Contains(t, err.Error(), "is not a regular file")
}

func TestWorkflow_Generate_IndexUnavailable(t *testing.T) {
	project := newProject(t, sampleSource)
	require.NoError(t, os.WriteFile(filepath.Join(project.root, ManifestFileName), []byte("keep\n"), 0o644))

	wf, _ := newTestWorkflow(t, nil, nil)
	args := project.generateArgs(m.ManifestRegenerate)
	args.RuntimeVersion = "2.7"

	_, err := wf.Generate(context.Background(), args)
	require.ErrorIs(t, err, m.ErrIndexUnavailable)

	assert.Equal(t, "keep\n", project.read(t, ManifestFileName), "manifest must not be touched")
	assert.False(t, project.exists(DescriptorFileName))
}

func TestWorkflow_Run(t *testing.T) {
	project := newProject(t, sampleSource)
	runtime := &fakeRuntime{}
	wf, out := newTestWorkflow(t, runtime, nil)

	err := wf.Run(context.Background(), RunArgs{GenerateArgs: project.generateArgs(m.ManifestRegenerate)})
	require.NoError(t, err)

	descriptorPath := filepath.Join(project.root, DescriptorFileName)
	assert.Equal(t, []string{
		"build " + descriptorPath + " " + project.root + " main.py-image",
		"run main.py-image",
		"remove main.py-image",
	}, runtime.calls)
	assert.Contains(t, out.String(), "container output")
}

func TestWorkflow_Run_BuildFailureSkipsRun(t *testing.T) {
	project := newProject(t, sampleSource)
	runtime := &fakeRuntime{buildErr: errors.New("no daemon")}
	wf, _ := newTestWorkflow(t, runtime, nil)

	err := wf.Run(context.Background(), RunArgs{GenerateArgs: project.generateArgs(m.ManifestRegenerate)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build image")
	assert.Len(t, runtime.calls, 1)
}

func TestWorkflow_Run_RunFailureStillRemoves(t *testing.T) {
	project := newProject(t, sampleSource)
	runtime := &fakeRuntime{runErr: errors.New("exit status 2"), removeErr: errors.New("in use")}
	wf, _ := newTestWorkflow(t, runtime, nil)

	err := wf.Run(context.Background(), RunArgs{GenerateArgs: project.generateArgs(m.ManifestRegenerate)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run container")
	assert.Equal(t, "remove main.py-image", runtime.calls[len(runtime.calls)-1])
}

func TestWorkflow_Run_ValidationFailureSkipsRuntime(t *testing.T) {
	runtime := &fakeRuntime{}
	wf, _ := newTestWorkflow(t, runtime, nil)

	err := wf.Run(context.Background(), RunArgs{GenerateArgs: GenerateArgs{OutputDir: m.Path(t.TempDir())}})
	require.ErrorIs(t, err, m.ErrValidation)
	assert.Empty(t, runtime.calls)
}

func TestWorkflow_Deps(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first.py")
	second := filepath.Join(root, "second.py")
	require.NoError(t, os.WriteFile(first, []byte("import os\nimport requests\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("from yaml import safe_load\n"), 0o644))

	wf, out := newTestWorkflow(t, nil, nil)

	err := wf.Deps(context.Background(), DepsArgs{
		Paths:          []m.Path{m.Path(first), m.Path(second)},
		RuntimeVersion: "3.5",
		Threads:        2,
	})
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "requests")
	assert.Contains(t, output, "yaml")
	assert.Contains(t, output, "stdlib")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("first.py")), bytes.Index(out.Bytes(), []byte("second.py")))
}

func TestWorkflow_Deps_Errors(t *testing.T) {
	wf, _ := newTestWorkflow(t, nil, nil)

	t.Run("no paths", func(t *testing.T) {
		err := wf.Deps(context.Background(), DepsArgs{RuntimeVersion: "3.5"})
		require.ErrorIs(t, err, m.ErrValidation)
	})

	t.Run("missing file", func(t *testing.T) {
		err := wf.Deps(context.Background(), DepsArgs{
			Paths:          []m.Path{m.Path(filepath.Join(t.TempDir(), "missing.py"))},
			RuntimeVersion: "3.5",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.py")
	})

	t.Run("unknown runtime", func(t *testing.T) {
		err := wf.Deps(context.Background(), DepsArgs{Paths: []m.Path{"x.py"}, RuntimeVersion: "1.0"})
		require.ErrorIs(t, err, m.ErrIndexUnavailable)
	})
}

func TestWorkflow_Plan(t *testing.T) {
	project := newProject(t, sampleSource)
	args := project.generateArgs(m.ManifestRegenerate)

	t.Run("shows additions before first generate", func(t *testing.T) {
		wf, out := newTestWorkflow(t, nil, nil)

		require.NoError(t, wf.Plan(context.Background(), args))

		assert.Contains(t, out.String(), "+requests")
		assert.Contains(t, out.String(), "+FROM python:3.5")
		assert.False(t, project.exists(ManifestFileName), "plan must not write")
		assert.False(t, project.exists(DescriptorFileName), "plan must not write")
	})

	t.Run("reports up to date after generate", func(t *testing.T) {
		wf, out := newTestWorkflow(t, nil, nil)

		_, err := wf.Generate(context.Background(), args)
		require.NoError(t, err)
		out.Reset()

		require.NoError(t, wf.Plan(context.Background(), args))
		assert.Contains(t, out.String(), ManifestFileName+": up to date")
		assert.Contains(t, out.String(), DescriptorFileName+": up to date")
	})

	t.Run("shows changed run arguments", func(t *testing.T) {
		wf, out := newTestWorkflow(t, nil, nil)

		changed := project.generateArgs(m.ManifestRegenerate, "--debug")
		require.NoError(t, wf.Plan(context.Background(), changed))
		assert.Contains(t, out.String(), `+CMD [ "python", "./main.py", "--debug" ]`)
		assert.Contains(t, out.String(), `-CMD [ "python", "./main.py" ]`)
	})
}

func TestWorkflow_Plan_ManifestRemoval(t *testing.T) {
	project := newProject(t, "import os\n")
	require.NoError(t, os.WriteFile(filepath.Join(project.root, ManifestFileName), []byte("requests\n"), 0o644))

	wf, out := newTestWorkflow(t, nil, nil)

	require.NoError(t, wf.Plan(context.Background(), project.generateArgs(m.ManifestRegenerate)))
	assert.Contains(t, out.String(), "would be removed")
	assert.Contains(t, out.String(), "-requests")
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "main.py-image", ImageName("main.py"))
	assert.Equal(t, "app.py-image", ImageName("nested/App.py"))
}
