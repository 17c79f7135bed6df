package scripts

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// UnresolvedDependencyError is returned when a script references a name no
	// script in the same phase provides. Missing maps each unknown name to the
	// scripts that reference it.
	UnresolvedDependencyError struct {
		Missing map[string][]string
	}

	// UnsupportedPrefixError is returned when a Current script's name doesn't
	// start with any of the dialect's object type prefixes.
	UnsupportedPrefixError struct {
		Path string
	}
)

// Names returns the unresolved names in sorted order.
func (e *UnresolvedDependencyError) Names() []string {
	names := make([]string, 0, len(e.Missing))
	for name := range e.Missing {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (e *UnresolvedDependencyError) Error() string {
	names := e.Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (referenced by %s)", name, strings.Join(e.Missing[name], ", ")))
	}

	return "unresolved dependencies: " + strings.Join(parts, "; ")
}

func (e *UnsupportedPrefixError) Error() string {
	return "unsupported script prefix: " + e.Path
}
