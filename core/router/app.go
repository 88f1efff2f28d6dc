package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/pathmatch"
	"github.com/dmitrymomot/relay/core/response"
)

// App is a node of the mount tree. It owns its routes, its middlewares and the
// applications mounted into it, and serves requests through a dispatch table
// built from all of them.
type App struct {
	routes      []*route
	middlewares []*middleware
	mounts      []mount
	parents     []*App

	service    any
	serviceSet bool

	logger       *slog.Logger
	exposeErrors bool
	notFound     func(r *http.Request) *response.Response

	buildMu sync.Mutex
	table   atomic.Pointer[dispatchTable]
}

type mount struct {
	prefix string
	app    *App
}

// New creates an empty application.
func New(opts ...Option) *App {
	a := &App{
		logger:       logger.Nop(),
		exposeErrors: true,
		notFound:     defaultNotFound,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func defaultNotFound(*http.Request) *response.Response {
	return response.Text("Not found", response.WithStatus(http.StatusNotFound))
}

// Mount attaches child under prefix. Prefix "/" mounts without a prefix.
// The same child may be mounted several times; cycles are rejected.
func (a *App) Mount(prefix string, child *App) *App {
	if child == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilApp, prefix))
	}

	p := pathmatch.Normalize(prefix)
	if strings.Contains(p, "*") {
		panic(fmt.Errorf("%w: '%s' cannot contain a wildcard", ErrInvalidMountPrefix, prefix))
	}
	if _, err := pathmatch.Compile(p); err != nil {
		panic(fmt.Errorf("%w: %w", ErrInvalidMountPrefix, err))
	}

	if child == a || child.reaches(a) {
		panic(fmt.Errorf("%w on '%s'", ErrMountCycle, prefix))
	}

	a.mounts = append(a.mounts, mount{prefix: p, app: child})
	child.parents = append(child.parents, a)
	if err := a.checkTree(); err != nil {
		a.mounts = a.mounts[:len(a.mounts)-1]
		child.parents = child.parents[:len(child.parents)-1]
		panic(fmt.Errorf("%w: '%s': %w", ErrInvalidMountPrefix, prefix, err))
	}
	a.invalidate()
	return a
}

// checkTree resolves every pattern reachable from a and from each app a is
// mounted into, so that conflicts between a mount prefix and the patterns
// below it surface at registration instead of on the first request.
func (a *App) checkTree() error {
	seen := make(map[*App]struct{})
	var visit func(x *App) error
	visit = func(x *App) error {
		if _, ok := seen[x]; ok {
			return nil
		}
		seen[x] = struct{}{}
		if err := (&flattener{}).walk(x, "/"); err != nil {
			return err
		}
		for _, parent := range x.parents {
			if err := visit(parent); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(a)
}

// reaches reports whether target is mounted somewhere below a.
func (a *App) reaches(target *App) bool {
	for _, m := range a.mounts {
		if m.app == target || m.app.reaches(target) {
			return true
		}
	}
	return false
}

// invalidate drops the cached dispatch table of a and of every app it is
// mounted into.
func (a *App) invalidate() {
	a.table.Store(nil)
	for _, p := range a.parents {
		p.invalidate()
	}
}

// SetService attaches an opaque service reference, available to handlers via
// Context.Service. It can be set only once.
func (a *App) SetService(svc any) error {
	if svc == nil {
		return ErrNilService
	}
	if a.serviceSet {
		return ErrServiceAlreadySet
	}
	a.service = svc
	a.serviceSet = true
	return nil
}

// Service returns the attached service or nil.
func (a *App) Service() any {
	return a.service
}

// Routes returns every route reachable from a with its absolute path, in
// registration order across the mount tree. It panics when the mount tree
// cannot be resolved; use Build to get the error instead.
func (a *App) Routes() []RouteInfo {
	t, err := a.resolve()
	if err != nil {
		panic(err)
	}
	out := make([]RouteInfo, len(t.routes))
	copy(out, t.routes)
	return out
}

// Build resolves the mount tree into the dispatch table now instead of on the
// first request, reporting configuration errors.
func (a *App) Build() error {
	_, err := a.resolve()
	return err
}

// resolve returns the cached dispatch table, building it when needed.
func (a *App) resolve() (*dispatchTable, error) {
	if t := a.table.Load(); t != nil {
		return t, nil
	}

	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	if t := a.table.Load(); t != nil {
		return t, nil
	}

	t, err := a.build()
	if err != nil {
		return nil, err
	}
	a.table.Store(t)
	return t, nil
}
