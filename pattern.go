package croft

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// A segment pattern is one of three kinds: a static literal, a named-parameter
// capture "{name}", or a wildcard capture "*name" that consumes every remaining
// segment. The kind decides the match tie-break order: static wins over
// parameter, parameter wins over wildcard.
type patternKind int

const (
	staticPattern patternKind = iota
	paramPattern
	wildcardPattern
)

type pattern struct {
	kind    patternKind
	literal string // static literal, kept percent-encoded as registered
	name    string // capture name for param and wildcard kinds
}

func (p pattern) String() string {
	switch p.kind {
	case paramPattern:
		return "{" + p.name + "}"
	case wildcardPattern:
		return "*" + p.name
	default:
		return p.literal
	}
}

// parseSegmentPattern parses one registration path segment.
func parseSegmentPattern(segment string) (pattern, error) {
	switch {
	case strings.HasPrefix(segment, "{") || strings.HasSuffix(segment, "}"):
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			return pattern{}, errors.Newf("unbalanced braces in segment %q", segment)
		}

		name := segment[1 : len(segment)-1]
		if err := validateCaptureName(name, segment); err != nil {
			return pattern{}, err
		}

		return pattern{kind: paramPattern, name: name}, nil

	case strings.HasPrefix(segment, "*"):
		name := segment[1:]
		if err := validateCaptureName(name, segment); err != nil {
			return pattern{}, err
		}

		return pattern{kind: wildcardPattern, name: name}, nil

	case segment == "":
		return pattern{}, errors.New("empty path segment")

	default:
		return pattern{kind: staticPattern, literal: segment}, nil
	}
}

func validateCaptureName(name, segment string) error {
	if name == "" {
		return errors.Newf("segment %q has no capture name", segment)
	}

	if strings.ContainsAny(name, "/{}*") {
		return errors.Newf("invalid capture name in segment %q", segment)
	}

	return nil
}

// parseRoutePath splits a registration path into segment patterns. The path
// must be rooted; a wildcard segment must come last. The root path "/" yields
// no segments.
func parseRoutePath(path string) ([]pattern, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, errors.Newf("path %q must start with a slash", path)
	}

	if path == "/" {
		return nil, nil
	}

	path = strings.TrimSuffix(path, "/")

	rawSegments := strings.Split(path[1:], "/")
	patterns := make([]pattern, 0, len(rawSegments))

	for i, raw := range rawSegments {
		pat, err := parseSegmentPattern(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "path %q", path)
		}

		if pat.kind == wildcardPattern && i != len(rawSegments)-1 {
			return nil, errors.Newf("path %q: wildcard segment %q must be last", path, raw)
		}

		patterns = append(patterns, pat)
	}

	return patterns, nil
}
