package pathmatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid path pattern")

// WildcardParam is the key under which the segments matched by "*" are bound.
const WildcardParam = "*"

// Params holds the values bound by parameter and wildcard segments.
type Params map[string]string

// Get returns the value bound to name, or an empty string.
func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

type segmentKind uint8

const (
	segmentLiteral segmentKind = iota
	segmentParam
	segmentWildcard
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
}

// Matcher tests paths against a compiled pattern. It is immutable and safe for
// concurrent use.
type Matcher struct {
	pattern  string
	segments []segment
	catchAll bool
	static   bool
}

// Compile parses pattern into a Matcher. The pattern is normalized first.
func Compile(pattern string) (*Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	p := Normalize(pattern)
	if p == CatchAll {
		return &Matcher{pattern: p, catchAll: true}, nil
	}

	raw := split(p)
	m := &Matcher{
		pattern:  p,
		segments: make([]segment, 0, len(raw)),
		static:   true,
	}
	seen := make(map[string]struct{})

	for _, s := range raw {
		switch {
		case s == "*":
			m.segments = append(m.segments, segment{kind: segmentWildcard})
			m.static = false
		case strings.HasPrefix(s, ":"):
			name := s[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: empty parameter name in %q", ErrInvalidPattern, pattern)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: duplicate parameter %q in %q", ErrInvalidPattern, name, pattern)
			}
			seen[name] = struct{}{}
			m.segments = append(m.segments, segment{kind: segmentParam, value: name})
			m.static = false
		case strings.Contains(s, "*"):
			return nil, fmt.Errorf("%w: wildcard must be a whole segment in %q", ErrInvalidPattern, pattern)
		default:
			m.segments = append(m.segments, segment{kind: segmentLiteral, value: s})
		}
	}

	return m, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Pattern returns the normalized pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// IsStatic reports whether the pattern consists of literal segments only.
func (m *Matcher) IsStatic() bool {
	return m.static
}

// Test reports whether the whole path matches the pattern.
func (m *Matcher) Test(path string) bool {
	_, ok := m.Match(path)
	return ok
}

// Match matches the whole path and returns the bound parameters.
func (m *Matcher) Match(path string) (Params, bool) {
	path = Normalize(path)
	if m.catchAll {
		return Params{WildcardParam: decode(strings.TrimPrefix(path, "/"))}, true
	}

	segs := decodeAll(split(path))
	params := make(Params)
	if !m.walk(0, 0, segs, params, false) {
		return nil, false
	}
	return params, true
}

// MatchPrefix reports whether the path equals the pattern or continues it with
// further segments. The root pattern only matches the root path.
func (m *Matcher) MatchPrefix(path string) bool {
	if m.catchAll {
		return true
	}
	path = Normalize(path)
	if len(m.segments) == 0 {
		return path == "/"
	}
	return m.walk(0, 0, decodeAll(split(path)), make(Params), true)
}

// walk matches pattern segments from pi against path segments from si.
// Wildcards try the shortest run first.
func (m *Matcher) walk(pi, si int, segs []string, params Params, prefix bool) bool {
	if pi == len(m.segments) {
		return prefix || si == len(segs)
	}

	seg := m.segments[pi]
	switch seg.kind {
	case segmentLiteral:
		if si < len(segs) && segs[si] == seg.value {
			return m.walk(pi+1, si+1, segs, params, prefix)
		}
		return false

	case segmentParam:
		if si >= len(segs) || segs[si] == "" {
			return false
		}
		if m.walk(pi+1, si+1, segs, params, prefix) {
			params[seg.value] = segs[si]
			return true
		}
		return false

	default:
		for end := si; end <= len(segs); end++ {
			if m.walk(pi+1, end, segs, params, prefix) {
				params[WildcardParam] = strings.Join(segs[si:end], "/")
				return true
			}
		}
		return false
	}
}

func decodeAll(segs []string) []string {
	for i, s := range segs {
		segs[i] = decode(s)
	}
	return segs
}

// decode percent-decodes a path segment, keeping the raw text when it is malformed.
func decode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
