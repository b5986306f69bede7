package domain

import (
	m "pydock.dev/pkg/pydock/internal/model"
)

// Classify returns the modules of set that are not part of index, keeping set order.
func Classify(set m.ModuleSet, index m.StdlibIndex) m.DependencyList {
	deps := m.DependencyList{}

	for _, name := range set.Names() {
		if index.Contains(name) {
			continue
		}

		deps = append(deps, name)
	}

	return deps
}

// Describe labels every module of set as stdlib or external.
func Describe(set m.ModuleSet, index m.StdlibIndex) []m.ModuleReport {
	reports := make([]m.ModuleReport, 0, set.Len())

	for _, name := range set.Names() {
		kind := m.ModuleExternal
		if index.Contains(name) {
			kind = m.ModuleStdlib
		}

		reports = append(reports, m.ModuleReport{Name: name, Kind: kind})
	}

	return reports
}
