package scripts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
)

// ErrPhaseDirMissing is returned when a phase directory does not exist.
var ErrPhaseDirMissing = errors.New("phase directory does not exist")

type (
	// Options configures a Repository.
	Options struct {
		// DeltaDir, CurrentDir and PostDir are the phase roots.
		DeltaDir   string
		CurrentDir string
		PostDir    string

		// Extension is the dialect's script extension, e.g. ".sql".
		Extension string

		// Prefixes are the Current object type prefixes in deployment precedence.
		Prefixes []string
	}

	// Repository enumerates the scripts of each phase.
	Repository struct {
		opts Options
	}
)

// NewRepository creates a Repository for the given layout.
func NewRepository(opts Options) *Repository {
	return &Repository{opts: opts}
}

// Deltas returns every *.up file under the delta root, or under subdir of it when
// subdir is non-empty, sorted by file name. Content is not loaded.
func (r *Repository) Deltas(subdir string) ([]*File, error) {
	root := r.opts.DeltaDir
	if subdir != "" {
		root = filepath.Join(root, subdir)
	}

	files, err := walk(root, PhaseDelta, false, func(base string) bool {
		return hasSuffixFold(base, consts.DeltaUpExt)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		bi, bj := files[i].BaseName(), files[j].BaseName()
		if bi != bj {
			return bi < bj
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// Current returns every script under the current root whose name starts with one of
// the configured prefixes and ends with the dialect extension. Other files are
// skipped.
func (r *Repository) Current() ([]*File, error) {
	return walk(r.opts.CurrentDir, PhaseCurrent, true, func(base string) bool {
		if !hasSuffixFold(base, r.opts.Extension) {
			return false
		}
		return PrefixIndex(base, r.opts.Prefixes) >= 0
	})
}

// Post returns every script under the post root with the dialect extension.
func (r *Repository) Post() ([]*File, error) {
	return walk(r.opts.PostDir, PhasePost, true, func(base string) bool {
		return hasSuffixFold(base, r.opts.Extension)
	})
}

func walk(root string, phase Phase, load bool, match func(string) bool) ([]*File, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrPhaseDirMissing, root)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	var files []*File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", path)
		}

		f := &File{Path: abs, Name: LogicalName(abs), Phase: phase}
		if load {
			if f.Content, err = os.ReadFile(abs); err != nil {
				return errors.Wrapf(err, "failed to read script %s", abs)
			}
		}

		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enumerate %s", root)
	}

	return files, nil
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
