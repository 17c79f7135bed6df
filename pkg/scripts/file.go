package scripts

import (
	"path/filepath"
	"strings"
)

// Phase names one of the three deployment phases.
type Phase string

const (
	// PhaseDelta covers versioned scripts that run exactly once.
	PhaseDelta Phase = "delta"

	// PhaseCurrent covers idempotent object definitions.
	PhaseCurrent Phase = "current"

	// PhasePost covers scripts that run on every deployment.
	PhasePost Phase = "post"
)

// File is a script discovered on disk. Content is only loaded for Current and Post
// scripts, where it is needed for dependency extraction.
type File struct {
	Path    string
	Name    string
	Phase   Phase
	Content []byte
}

// BaseName returns the file name including its extension.
func (f *File) BaseName() string {
	return filepath.Base(f.Path)
}

// LogicalName returns the lowercased file name without its extension.
func LogicalName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// DeltaVersion returns the version of a delta file: everything before the first
// underscore of its file name. Names without an underscore are their own version.
//
//	DeltaVersion("20240101120000_create_orders.up") == "20240101120000"
func DeltaVersion(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}

	return base
}
