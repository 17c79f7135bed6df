package scripts

import (
	"path/filepath"
	"sort"
	"strings"
)

// PrefixIndex returns the index of the first prefix the file name starts with, or
// -1. Matching is case-insensitive.
func PrefixIndex(name string, prefixes []string) int {
	base := strings.ToLower(filepath.Base(name))
	for i, prefix := range prefixes {
		if strings.HasPrefix(base, strings.ToLower(prefix)) {
			return i
		}
	}

	return -1
}

// Order sorts files by descending rank. When prefixes is non-nil, files with equal
// rank are ordered by the position of their prefix in prefixes, and a file matching
// none of them yields an UnsupportedPrefixError. Remaining ties are broken by path.
func Order(files []*File, ranks map[string]int, prefixes []string) ([]*File, error) {
	type entry struct {
		file   *File
		rank   int
		prefix int
	}

	entries := make([]entry, 0, len(files))
	for _, f := range files {
		e := entry{file: f, rank: ranks[f.Name]}
		if prefixes != nil {
			if e.prefix = PrefixIndex(f.Path, prefixes); e.prefix < 0 {
				return nil, &UnsupportedPrefixError{Path: f.Path}
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.rank != b.rank:
			return a.rank > b.rank
		case a.prefix != b.prefix:
			return a.prefix < b.prefix
		default:
			return a.file.Path < b.file.Path
		}
	})

	ordered := make([]*File, 0, len(entries))
	for _, e := range entries {
		ordered = append(ordered, e.file)
	}

	return ordered, nil
}
