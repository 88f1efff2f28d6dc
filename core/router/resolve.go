package router

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/pathmatch"
)

// flatRoute is a route rewritten to its absolute path.
type flatRoute struct {
	method  string
	path    string
	matcher *pathmatch.Matcher
	handler HandlerFunc
	owner   *App
	order   int
}

// flatMiddleware is a middleware rewritten to its absolute pattern, with an
// ordinal that is global across the mount tree.
type flatMiddleware struct {
	path    string
	ordinal int
	rank    pathmatch.Specificity
	matcher *pathmatch.Matcher
	handler MiddlewareFunc
}

// endpoint is a fully composed route ready for dispatch.
type endpoint struct {
	info    RouteInfo
	owner   *App
	matcher *pathmatch.Matcher
	rank    pathmatch.Specificity
	order   int
	chain   HandlerFunc
}

// dispatchTable is the immutable result of resolving a mount tree.
type dispatchTable struct {
	static  map[string]map[string]*endpoint
	dynamic map[string][]*endpoint
	routes  []RouteInfo
}

// flattener walks the mount tree collecting routes and middlewares with
// absolute paths. Ordinals are assigned in pre-order: an app's own middlewares
// first, then each mounted app in mount-call order.
type flattener struct {
	routes      []flatRoute
	middlewares []flatMiddleware
	ordinal     int
}

func (f *flattener) walk(a *App, prefix string) error {
	for _, mw := range a.middlewares {
		p := pathmatch.Join(prefix, mw.path)
		m, err := pathmatch.Compile(p)
		if err != nil {
			return fmt.Errorf("%w: middleware '%s': %w", ErrRouteTable, p, err)
		}
		f.middlewares = append(f.middlewares, flatMiddleware{
			path:    p,
			ordinal: f.ordinal,
			rank:    pathmatch.Of(p),
			matcher: m,
			handler: mw.handler,
		})
		f.ordinal++
	}

	for _, r := range a.routes {
		p := pathmatch.Join(prefix, r.path)
		m, err := pathmatch.Compile(p)
		if err != nil {
			return fmt.Errorf("%w: route %s %s: %w", ErrRouteTable, r.method, p, err)
		}
		f.routes = append(f.routes, flatRoute{
			method:  r.method,
			path:    p,
			matcher: m,
			handler: r.handler,
			owner:   a,
			order:   len(f.routes),
		})
	}

	for _, m := range a.mounts {
		if err := f.walk(m.app, pathmatch.Join(prefix, m.prefix)); err != nil {
			return err
		}
	}
	return nil
}

// build resolves the mount tree rooted at a into a dispatch table.
func (a *App) build() (*dispatchTable, error) {
	f := &flattener{}
	if err := f.walk(a, "/"); err != nil {
		return nil, err
	}

	slices.SortStableFunc(f.middlewares, func(x, y flatMiddleware) int {
		if c := x.rank.Compare(y.rank); c != 0 {
			return c
		}
		return x.ordinal - y.ordinal
	})

	t := &dispatchTable{
		static:  make(map[string]map[string]*endpoint),
		dynamic: make(map[string][]*endpoint),
		routes:  make([]RouteInfo, 0, len(f.routes)),
	}
	seen := make(map[RouteInfo]struct{}, len(f.routes))

	for _, r := range f.routes {
		info := RouteInfo{Method: r.method, Path: r.path}
		if _, dup := seen[info]; dup {
			a.logger.Warn("route shadowed by an earlier registration",
				logger.Component("router"),
				logger.Method(r.method),
				logger.Route(r.path),
			)
			continue
		}
		seen[info] = struct{}{}

		m := r.matcher
		e := &endpoint{
			info:    info,
			owner:   r.owner,
			matcher: m,
			rank:    pathmatch.Of(r.path),
			order:   r.order,
			chain:   compose(r.handler, applicable(f.middlewares, r.path)),
		}

		if m.IsStatic() {
			byMethod, ok := t.static[r.path]
			if !ok {
				byMethod = make(map[string]*endpoint)
				t.static[r.path] = byMethod
			}
			byMethod[r.method] = e
		} else {
			t.dynamic[r.method] = append(t.dynamic[r.method], e)
		}
		t.routes = append(t.routes, info)
	}

	for method := range t.dynamic {
		slices.SortStableFunc(t.dynamic[method], func(x, y *endpoint) int {
			if c := x.rank.Compare(y.rank); c != 0 {
				return c
			}
			return x.order - y.order
		})
	}

	a.logger.Debug("dispatch table built",
		logger.Component("router"),
		slog.Int("routes", len(t.routes)),
		slog.Int("middlewares", len(f.middlewares)),
	)
	return t, nil
}

// applicable returns the handlers of the sorted middlewares that apply to
// path, most specific first.
func applicable(sorted []flatMiddleware, path string) []MiddlewareFunc {
	var out []MiddlewareFunc
	for _, mw := range sorted {
		if mw.matcher.MatchPrefix(path) {
			out = append(out, mw.handler)
		}
	}
	return out
}

// lookup finds the endpoint for method and path. Static routes are checked
// first; dynamic routes are tried in specificity order.
func (t *dispatchTable) lookup(method, path, escaped string) (*endpoint, pathmatch.Params) {
	if byMethod, ok := t.static[pathmatch.Normalize(path)]; ok {
		if e, ok := byMethod[method]; ok {
			return e, nil
		}
	}
	for _, e := range t.dynamic[method] {
		if params, ok := e.matcher.Match(escaped); ok {
			return e, params
		}
	}
	return nil, nil
}
