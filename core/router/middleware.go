package router

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/relay/core/pathmatch"
)

type middleware struct {
	path    string
	ordinal int
	handler MiddlewareFunc
}

// Use registers h for every given path pattern, or for all paths ("*") when
// none is given. Each pattern becomes its own entry sharing the handler.
//
// A middleware applies to routes whose path equals the pattern or continues it
// with more segments: "/api" applies to "/api" and "/api/users".
func (a *App) Use(h MiddlewareFunc, paths ...string) *App {
	if h == nil {
		panic(fmt.Errorf("%w: nil handler", ErrInvalidMiddlewareDefinition))
	}
	if len(paths) == 0 {
		paths = []string{pathmatch.CatchAll}
	}

	entries := make([]*middleware, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			panic(fmt.Errorf("%w: empty path", ErrInvalidMiddlewareDefinition))
		}
		m, err := pathmatch.Compile(p)
		if err != nil {
			panic(fmt.Errorf("%w: %w", ErrInvalidMiddlewareDefinition, err))
		}
		entries = append(entries, &middleware{
			path:    m.Pattern(),
			ordinal: len(a.middlewares) + len(entries),
			handler: h,
		})
	}

	a.middlewares = append(a.middlewares, entries...)
	if err := a.checkTree(); err != nil {
		a.middlewares = a.middlewares[:len(a.middlewares)-len(entries)]
		panic(fmt.Errorf("%w: %w", ErrInvalidMiddlewareDefinition, err))
	}
	a.invalidate()
	return a
}
