// Package pathmatch compiles route and middleware path patterns into matchers
// and ranks patterns by specificity.
//
// A pattern is a slash separated list of segments. Each segment is one of:
//
//   - a literal, matched exactly and case-sensitively
//   - a parameter ":name", matching one non-empty segment and binding its decoded value
//   - a wildcard "*", matching zero or more segments, trailing or embedded
//
// The lone pattern "*" is a catch-all that matches every path.
//
// Basic usage:
//
//	m := pathmatch.MustCompile("/users/:id/*")
//
//	params, ok := m.Match("/users/42/files/a.txt")
//	// ok == true, params["id"] == "42", params["*"] == "files/a.txt"
//
//	m.MatchPrefix("/users/42/files") // true: middleware style prefix-or-exact match
//
// Paths and patterns are normalized before use: repeated slashes collapse and a
// trailing slash is dropped, so "/users/" and "//users" both become "/users".
//
// # Specificity
//
// Of applies the ordering used to sort middlewares that apply to the same route:
//
//	pathmatch.Of("/admin/users/*").Compare(pathmatch.Of("/admin/*")) < 0 // more specific
//
// The comparison is purely structural. Callers break remaining ties with their
// own registration order.
package pathmatch
