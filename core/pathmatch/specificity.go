package pathmatch

import "strings"

// Specificity is the structural rank of a pattern.
type Specificity struct {
	CatchAll  bool // the lone "*" pattern
	Wildcards int  // occurrences of "*"
	Params    int  // occurrences of ":"
	Segments  int  // parts produced by splitting on "/"
	Length    int  // raw pattern length
}

// Of computes the specificity of pattern as written.
func Of(pattern string) Specificity {
	return Specificity{
		CatchAll:  pattern == CatchAll,
		Wildcards: strings.Count(pattern, "*"),
		Params:    strings.Count(pattern, ":"),
		Segments:  len(strings.Split(pattern, "/")),
		Length:    len(pattern),
	}
}

// Compare orders s against o, most specific first. It returns a negative
// number when s is more specific, a positive number when o is, and zero when
// the patterns tie. The first differing criterion wins:
//
//  1. the catch-all "*" sorts last
//  2. fewer wildcards
//  3. fewer parameters
//  4. more segments
//  5. longer pattern
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.CatchAll != o.CatchAll:
		if s.CatchAll {
			return 1
		}
		return -1
	case s.Wildcards != o.Wildcards:
		return s.Wildcards - o.Wildcards
	case s.Params != o.Params:
		return s.Params - o.Params
	case s.Segments != o.Segments:
		return o.Segments - s.Segments
	default:
		return o.Length - s.Length
	}
}
