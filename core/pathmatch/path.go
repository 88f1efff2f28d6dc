package pathmatch

import "strings"

// CatchAll is the pattern that matches every path.
const CatchAll = "*"

// Normalize collapses repeated slashes, adds a leading slash and strips a
// trailing one. The root path stays "/" and the catch-all pattern is returned
// unchanged.
func Normalize(p string) string {
	if p == CatchAll {
		return p
	}
	if p == "" || p == "/" {
		return "/"
	}

	var b strings.Builder
	b.Grow(len(p) + 1)

	prevSlash := false
	if p[0] != '/' {
		b.WriteByte('/')
		prevSlash = true
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if len(out) > 1 && out[len(out)-1] == '/' {
		out = out[:len(out)-1]
	}
	return out
}

// Join prefixes p with a mount prefix and normalizes the result.
// A prefix of "" or "/" contributes nothing. The catch-all pattern becomes
// "<prefix>/*" so it stays scoped to the mounted subtree.
func Join(prefix, p string) string {
	prefix = Normalize(prefix)
	if prefix == "/" {
		return Normalize(p)
	}
	if p == CatchAll {
		return prefix + "/*"
	}
	return Normalize(prefix + "/" + p)
}

// split returns the segments of a normalized path. The root path has none.
func split(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
