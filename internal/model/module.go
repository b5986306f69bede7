package model

// ModuleKind tells whether an imported module ships with the runtime.
type ModuleKind string

const (
	// ModuleStdlib marks a module found in the standard library index.
	ModuleStdlib ModuleKind = "stdlib"
	// ModuleExternal marks a module that must be installed.
	ModuleExternal ModuleKind = "external"
)

// ModuleSet is an insertion-ordered set of top-level module names.
// The zero value is ready to use.
type ModuleSet struct {
	names []string
	seen  map[string]struct{}
}

// NewModuleSet builds a set from names, dropping repeats.
func NewModuleSet(names ...string) ModuleSet {
	var set ModuleSet
	for _, name := range names {
		set.Add(name)
	}

	return set
}

// Add records name and reports whether it was new.
func (s *ModuleSet) Add(name string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}

	if _, ok := s.seen[name]; ok {
		return false
	}

	s.seen[name] = struct{}{}
	s.names = append(s.names, name)

	return true
}

// Contains reports whether name was recorded.
func (s ModuleSet) Contains(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of recorded names.
func (s ModuleSet) Len() int {
	return len(s.names)
}

// Names returns a copy of the recorded names in first-seen order.
func (s ModuleSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)

	return out
}

// DependencyList is the ordered list of external modules, in ModuleSet order.
type DependencyList []string

// StdlibIndex is the set of module names built into one runtime version.
type StdlibIndex struct {
	Version string
	modules map[string]struct{}
}

// NewStdlibIndex builds an index for version from names.
func NewStdlibIndex(version string, names []string) StdlibIndex {
	modules := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}

		modules[name] = struct{}{}
	}

	return StdlibIndex{Version: version, modules: modules}
}

// Contains reports whether name is part of the standard library.
func (i StdlibIndex) Contains(name string) bool {
	_, ok := i.modules[name]
	return ok
}

// Len returns the number of names in the index.
func (i StdlibIndex) Len() int {
	return len(i.modules)
}

// ModuleReport pairs an imported module with its classification.
type ModuleReport struct {
	Name string
	Kind ModuleKind
}

// FileDependencies is the classified import list of one source file.
type FileDependencies struct {
	Path    Path
	Modules []ModuleReport
}
