// Package tokens substitutes environment-specific values into script content.
//
// Scripts reference values with #{KEY} placeholders. Values come from a token
// table, usually loaded from a KEY=VALUE file such as
// Database/default.db.token.config:
//
//	# connection targets
//	LINKED_SERVER=reporting01
//	ARCHIVE_DB=archive
//
// Any placeholder left over after substitution is an error, so a script never
// reaches the database with an unresolved value.
package tokens

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var leftoverToken = regexp.MustCompile(`#\{\w+\}`)

type (
	// Table maps token keys to their replacement values. Lookups are
	// case-insensitive.
	Table map[string]string

	// UnmatchedTokenError lists the placeholders that had no value in the table.
	UnmatchedTokenError struct {
		Tokens []string
	}
)

func (e *UnmatchedTokenError) Error() string {
	return "unmatched tokens: " + strings.Join(e.Tokens, ", ")
}

// Substitute replaces every #{KEY} in content with its value from table. Keys that
// are empty or start with '#' are ignored, and carriage returns are stripped from
// values. A nil or empty table leaves content untouched.
func Substitute(content string, table Table) (string, error) {
	if len(table) == 0 {
		return content, nil
	}

	keys := make([]string, 0, len(table))
	for key := range table {
		if key == "" || strings.HasPrefix(key, "#") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pattern := regexp.MustCompile(`(?i)#\{` + regexp.QuoteMeta(key) + `\}`)
		value := strings.ReplaceAll(table[key], "\r", "")
		content = pattern.ReplaceAllLiteralString(content, value)
	}

	if leftovers := leftoverToken.FindAllString(content, -1); len(leftovers) > 0 {
		return "", &UnmatchedTokenError{Tokens: leftovers}
	}

	return content, nil
}

// Load parses KEY=VALUE lines from r. Blank lines and lines starting with '#' are
// skipped. The value is everything after the first '='; a line without '=' maps
// its key to the empty string. Duplicate keys are rejected.
func Load(r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, _ := strings.Cut(line, "=")
		if _, ok := table[key]; ok {
			return nil, errors.Errorf("duplicate token %q on line %d", key, lineNo)
		}

		table[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read token table")
	}

	return table, nil
}

// LoadFile loads a token table from path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open token file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}
