package scripts

import (
	"regexp"
	"sort"
	"strings"
)

var dependencyMarker = regexp.MustCompile(`(?i)\{\{(\w+)\}\}`)

// ExtractDependencies builds the reverse-dependency map for files: every file's
// logical name maps to the names of the files that reference it with a {{name}}
// marker. Each file is registered even when nothing references it. References to
// names outside files yield an UnresolvedDependencyError listing all of them.
func ExtractDependencies(files []*File) (map[string][]string, error) {
	deps := make(map[string][]string, len(files))
	for _, f := range files {
		if _, ok := deps[f.Name]; !ok {
			deps[f.Name] = []string{}
		}
	}

	missing := make(map[string][]string)
	for _, f := range files {
		for _, target := range references(f.Content) {
			if _, ok := deps[target]; !ok {
				missing[target] = appendUnique(missing[target], f.Name)
				continue
			}

			deps[target] = appendUnique(deps[target], f.Name)
		}
	}

	if len(missing) > 0 {
		for name := range missing {
			sort.Strings(missing[name])
		}
		return nil, &UnresolvedDependencyError{Missing: missing}
	}

	return deps, nil
}

func references(content []byte) []string {
	matches := dependencyMarker.FindAllSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(string(m[1])))
	}

	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}

	return append(list, s)
}
