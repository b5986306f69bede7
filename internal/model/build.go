package model

import "strings"

// ManifestMode selects whether the manifest is rebuilt or trusted as-is.
type ManifestMode int

const (
	// ManifestReuse keeps an existing manifest untouched.
	ManifestReuse ManifestMode = iota
	// ManifestRegenerate rebuilds the manifest from the entry file's imports.
	ManifestRegenerate
)

func (mm ManifestMode) String() string {
	switch mm {
	case ManifestReuse:
		return "reuse"
	case ManifestRegenerate:
		return "regenerate"
	default:
		return "unknown"
	}
}

// BuildParameters is the input of the descriptor synthesizer.
type BuildParameters struct {
	SourceDir       Path // relative to the build context
	EntryFile       Path
	Args            []string
	ManifestPresent bool
}

// BuildDescriptor is the ordered list of directive lines of a container build file.
type BuildDescriptor struct {
	Directives []string
}

// Artifacts describes what a generate run left on disk.
type Artifacts struct {
	ManifestPath   Path
	DescriptorPath Path
	Dependencies   DependencyList
	ManifestExists bool
}

// ArtifactDiff is the pending change to one artifact file.
type ArtifactDiff struct {
	Path    Path
	Diff    string // unified diff, empty when unchanged
	Removed bool   // the artifact would be deleted
}

// Text renders the descriptor file: directives separated by a blank line.
func (d BuildDescriptor) Text() string {
	if len(d.Directives) == 0 {
		return ""
	}

	return strings.Join(d.Directives, "\n\n") + "\n"
}
