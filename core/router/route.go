package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/relay/core/pathmatch"
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodPatch:   {},
	http.MethodOptions: {},
	http.MethodHead:    {},
}

type route struct {
	method  string
	path    string
	handler HandlerFunc
}

// Handle registers h for method and path. The path is normalized, so "/users/"
// and "//users" name the same route as "/users".
func (a *App) Handle(method, path string, h HandlerFunc) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := allowedMethods[method]; !ok {
		return fmt.Errorf("%w: unsupported method '%s'", ErrInvalidRouteDefinition, method)
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path for %s", ErrInvalidRouteDefinition, method)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %s %s", ErrInvalidRouteDefinition, method, path)
	}

	m, err := pathmatch.Compile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRouteDefinition, err)
	}
	p := m.Pattern()

	for _, r := range a.routes {
		if r.method == method && r.path == p {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, method, p)
		}
	}

	a.routes = append(a.routes, &route{method: method, path: p, handler: h})
	if err := a.checkTree(); err != nil {
		a.routes = a.routes[:len(a.routes)-1]
		return fmt.Errorf("%w: %w", ErrInvalidRouteDefinition, err)
	}
	a.invalidate()
	return nil
}

func (a *App) mustHandle(method, path string, h HandlerFunc) *App {
	if err := a.Handle(method, path, h); err != nil {
		panic(err)
	}
	return a
}

// Get registers a GET route.
func (a *App) Get(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodGet, path, h)
}

// Post registers a POST route.
func (a *App) Post(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodPost, path, h)
}

// Put registers a PUT route.
func (a *App) Put(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodPut, path, h)
}

// Delete registers a DELETE route.
func (a *App) Delete(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodDelete, path, h)
}

// Patch registers a PATCH route.
func (a *App) Patch(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodPatch, path, h)
}

// Options registers an OPTIONS route.
func (a *App) Options(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodOptions, path, h)
}

// Head registers a HEAD route.
func (a *App) Head(path string, h HandlerFunc) *App {
	return a.mustHandle(http.MethodHead, path, h)
}
