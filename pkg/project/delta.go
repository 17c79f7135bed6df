package project

import (
	_ "embed"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxDeltaSlug = 40

var (
	//go:embed embed/template.up
	templateUp string

	//go:embed embed/template.down
	templateDown string

	slugReplacer = strings.NewReplacer("-", "_", " ", "_")
)

// DeltaOptions controls NewDelta.
type DeltaOptions struct {
	// Down also writes a .down script.
	Down bool

	// Subdir places the script below Deltas, e.g. Blue or Green.
	Subdir string

	// Now stamps the version. Defaults to time.Now().
	Now time.Time

	// Creator is written into the template. Defaults to the current user.
	Creator string
}

// NewDelta writes a new delta script named <yyyyMMddHHmmss>_<slug>.up (and the
// matching .down when requested) and returns its file name without extension.
// The slug is the first 40 characters of name, lowercased, with dashes and
// spaces turned into underscores.
//
// Example:
//
//	base, err := proj.NewDelta("Add Orders Table", project.DeltaOptions{Down: true})
//	// base == "20250114093000_add_orders_table"
func (p *Project) NewDelta(name string, opts DeltaOptions) (string, error) {
	slug := DeltaSlug(name)
	if slug == "" {
		return "", errors.New("delta name is required")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	creator := opts.Creator
	if creator == "" {
		creator = currentUser()
	}

	dir := filepath.Join(p.DeltaDir(), opts.Subdir)
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", dir)
	}

	base := now.Format("20060102150405") + "_" + slug
	replacer := strings.NewReplacer("{DATETIME}", now.Format("01/02/2006"), "{CREATOR}", creator)

	files := map[string]string{consts.DeltaUpExt: templateUp}
	if opts.Down {
		files[consts.DeltaDownExt] = templateDown
	}

	for ext, tmpl := range files {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return "", errors.Errorf("delta %s already exists", path)
		}

		if err := os.WriteFile(path, []byte(replacer.Replace(tmpl)), consts.ModeFile); err != nil {
			return "", errors.Wrapf(err, "failed to write %s", path)
		}
	}

	return base, nil
}

// DeltaSlug normalizes a delta description for use in a file name.
func DeltaSlug(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > maxDeltaSlug {
		name = string(r[:maxDeltaSlug])
	}

	return slugReplacer.Replace(cases.Lower(language.Und).String(name))
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return os.Getenv("USER")
}
