package croft

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named paths and allows building URLs from them.
type Reverser struct {
	pats map[string][]pattern
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{make(map[string][]pattern)}
}

// Reverse builds the url for the named path, substituting the values for its
// parameter and wildcard segments in order.
func (r *Reverser) Reverse(name string, vals ...string) (string, error) {
	pats, ok := r.pats[name]
	if !ok {
		return "", errors.Newf("no path named %q, got: %v", name, lo.Keys(r.pats))
	}

	var b strings.Builder

	next := 0
	for _, pat := range pats {
		b.WriteByte('/')

		if pat.kind == staticPattern {
			b.WriteString(pat.literal)
			continue
		}

		if next >= len(vals) {
			return "", errors.Newf("path %q needs a value for %q", name, pat)
		}

		b.WriteString(vals[next])
		next++
	}

	if next != len(vals) {
		return "", errors.Newf("path %q got %d values, needs %d", name, len(vals), next)
	}

	if b.Len() == 0 {
		return "/", nil
	}

	return b.String(), nil
}

// Named registers the path under a name, panicking if the name is taken or the
// path does not parse.
func (r *Reverser) Named(name, path string) {
	if err := r.NamedPath(name, path); err != nil {
		panic("croft: " + err.Error())
	}
}

// NamedPath parses and registers the path under a name.
func (r *Reverser) NamedPath(name, path string) error {
	if _, exists := r.pats[name]; exists {
		return errors.Newf("path with name %q already exists", name)
	}

	pats, err := parseRoutePath(path)
	if err != nil {
		return errors.Wrap(err, "failed to parse path")
	}

	r.pats[name] = pats

	return nil
}
