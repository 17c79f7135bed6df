package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxThreshold is the highest referencer count Relaxed mode will accept
// when breaking a cycle.
const DefaultMaxThreshold = 20

type (
	// CycleMode controls how Rank reacts to a wave in which every remaining node
	// is still referenced.
	CycleMode struct {
		relaxed      bool
		maxThreshold int
	}

	// Edge is a dependency that could not be resolved: Name is still referenced
	// by Referencer.
	Edge struct {
		Name       string
		Referencer string
	}

	// CircularDependencyError is returned when ranking stalls. Edges lists every
	// remaining (name, referencer) pair.
	CircularDependencyError struct {
		Edges []Edge
	}
)

var (
	// Strict fails on the first stalled wave.
	Strict = CycleMode{}

	// DefaultRelaxed tolerates cycles up to DefaultMaxThreshold referencers.
	DefaultRelaxed = Relaxed(DefaultMaxThreshold)
)

// Relaxed returns a CycleMode that breaks stalled waves by accepting nodes whose
// remaining referencer count equals t, for t from 1 up to maxThreshold.
func Relaxed(maxThreshold int) CycleMode {
	return CycleMode{relaxed: true, maxThreshold: maxThreshold}
}

// IsRelaxed reports whether the mode breaks cycles.
func (m CycleMode) IsRelaxed() bool { return m.relaxed }

func (m CycleMode) String() string {
	if !m.relaxed {
		return "strict"
	}

	return fmt.Sprintf("relaxed(%d)", m.maxThreshold)
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, 0, len(e.Edges))
	for _, edge := range e.Edges {
		parts = append(parts, fmt.Sprintf("%s <- %s", edge.Name, edge.Referencer))
	}

	return "circular dependency: " + strings.Join(parts, ", ")
}

// Rank assigns a rank to every key of deps. deps maps each name to the names that
// reference it. The input map is not modified.
func Rank(deps map[string][]string, mode CycleMode) (map[string]int, error) {
	ranks := make(map[string]int, len(deps))
	if len(deps) == 0 {
		return ranks, nil
	}

	remaining := make(map[string][]string, len(deps))
	for name, refs := range deps {
		remaining[name] = append([]string(nil), refs...)
	}

	for rank := 1; len(remaining) > 0; rank++ {
		wave := selectWave(remaining, 0)

		if len(wave) == 0 && mode.relaxed {
			for t := 1; t <= mode.maxThreshold && len(wave) == 0; t++ {
				wave = selectWave(remaining, t)
			}
		}

		if len(wave) == 0 {
			return nil, &CircularDependencyError{Edges: edges(remaining)}
		}

		for _, name := range wave {
			ranks[name] = rank
			delete(remaining, name)
		}

		for name, refs := range remaining {
			remaining[name] = without(refs, wave)
		}
	}

	return ranks, nil
}

func selectWave(remaining map[string][]string, count int) []string {
	var wave []string
	for name, refs := range remaining {
		if len(refs) == count {
			wave = append(wave, name)
		}
	}

	sort.Strings(wave)
	return wave
}

func without(refs, removed []string) []string {
	out := refs[:0]
	for _, ref := range refs {
		if !contains(removed, ref) {
			out = append(out, ref)
		}
	}

	return out
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}

func edges(remaining map[string][]string) []Edge {
	var out []Edge
	for name, refs := range remaining {
		for _, ref := range refs {
			out = append(out, Edge{Name: name, Referencer: ref})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Referencer < out[j].Referencer
	})

	return out
}
