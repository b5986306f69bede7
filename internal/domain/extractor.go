// Package domain contains the import scanner, the artifact synthesizers and the
// workflow that ties them to the container runtime.
package domain

import (
	"strings"

	m "pydock.dev/pkg/pydock/internal/model"
)

const (
	importKeyword = "import"
	fromKeyword   = "from"
	aliasKeyword  = "as"
)

// noiseTokens never name a module.
var noiseTokens = map[string]struct{}{
	importKeyword: {},
	fromKeyword:   {},
	",":           {},
	"":            {},
	" ":           {},
}

// lineEndings folds CRLF and lone CR into LF before splitting.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ExtractImports scans Python source line by line and returns the top-level
// modules it imports, in first-seen order.
//
// This is a lexical heuristic, not a parser. Statements that continue over
// several physical lines only contribute their first line, and any line
// mentioning a quoted 'import' or containing '#' is skipped entirely.
func ExtractImports(source string) m.ModuleSet {
	var modules m.ModuleSet

	for _, raw := range strings.Split(lineEndings.Replace(source), "\n") {
		line := strings.TrimSpace(raw)
		if !isImportBearing(line) {
			continue
		}

		scanImportLine(line, &modules)
	}

	return modules
}

func isImportBearing(line string) bool {
	return strings.Contains(line, importKeyword+" ") &&
		!strings.Contains(line, "'"+importKeyword+"'") &&
		!strings.Contains(line, `"`+importKeyword+`"`) &&
		!strings.Contains(line, "#")
}

func scanImportLine(line string, modules *m.ModuleSet) {
	fromClause := strings.Contains(line, fromKeyword)

	for _, token := range strings.Split(line, " ") {
		token = strings.Trim(token, ",")

		if token == aliasKeyword {
			return
		}

		// `from X import Y` only contributes X.
		if fromClause && token == importKeyword {
			return
		}

		if isNoise(token) || modules.Contains(token) {
			continue
		}

		switch {
		case strings.Contains(token, ","):
			for _, part := range strings.Split(token, ",") {
				addModule(modules, strings.TrimSpace(part))
			}
		case strings.Contains(token, "."):
			head, _, _ := strings.Cut(token, ".")
			addModule(modules, strings.TrimSpace(head))
		default:
			modules.Add(token)
		}
	}
}

func addModule(modules *m.ModuleSet, name string) {
	if isNoise(name) {
		return
	}

	modules.Add(name)
}

func isNoise(token string) bool {
	_, ok := noiseTokens[token]
	return ok
}
