// Relay demo serving a small user API with the full middleware stack.
//
// Run:
//
//	go run ./cmd/relay-demo
//
// Try:
//
//	curl -i http://localhost:8080/
//	curl -i http://localhost:8080/health/ready
//	curl -i -H 'Authorization: Bearer demo' http://localhost:8080/api/users/42
//	curl -i -X POST -H 'Authorization: Bearer demo' -H 'Content-Type: application/json' \
//		-d '{"name":"Ada","email":"ada@example.com"}' http://localhost:8080/api/users
//	curl -s http://localhost:8080/metrics | grep relay_http
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/health"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
	"github.com/dmitrymomot/relay/core/server"
	"github.com/dmitrymomot/relay/core/validator"
	"github.com/dmitrymomot/relay/middleware"
)

type appConfig struct {
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*"`
	APIToken    string   `env:"API_TOKEN" envDefault:"demo"`
}

type user struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}

// users is the service shared by the API handlers.
type users struct {
	mu   sync.RWMutex
	byID map[string]user
}

func (u *users) get(id string) (user, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	v, ok := u.byID[id]
	return v, ok
}

func (u *users) add(v user) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byID[v.ID] = v
}

func main() {
	var (
		cfg       appConfig
		routerCfg router.Config
	)
	config.MustLoad(&cfg)
	config.MustLoad(&routerCfg)

	log := logger.New(
		logger.WithProduction("relay-demo"),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
	)

	reg := prometheus.NewRegistry()

	app := router.NewFromConfig(routerCfg, router.WithLogger(log))
	app.Use(middleware.Logging())
	app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: middleware.ULIDGenerator(),
	}))
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	app.Use(middleware.Metrics(reg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.Compress())
	app.Use(middleware.ClientIP())

	app.Options("/*", func(c *router.Context) (*response.Response, error) {
		return c.SetResponse(response.NoContent()), nil
	})
	app.Get("/", func(c *router.Context) (*response.Response, error) {
		ip, _ := middleware.GetClientIP(c)
		return c.JSON(map[string]any{"service": "relay-demo", "client_ip": ip})
	})

	app.Get("/health/live", health.Liveness)
	app.Get("/health/ready", health.Readiness(log))

	app.Mount("/api", newAPI(cfg.APIToken))

	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.MetricsHandler(reg))
	mux.Handle("/", app)

	srv, err := server.NewFromEnv(server.WithLogger(log))
	if err != nil {
		log.Error("invalid server configuration", logger.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, mux))
	if err := g.Wait(); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

var newID = middleware.ULIDGenerator()

func newAPI(token string) *router.App {
	api := router.New()
	if err := api.SetService(&users{byID: map[string]user{
		"42": {ID: "42", Name: "Ada", Email: "ada@example.com"},
	}}); err != nil {
		panic(err)
	}

	api.Use(middleware.BodyLimitWithSize(64*middleware.KB), "/users")
	api.Use(func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		got, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if !ok || got != token {
			return c.SetResponse(response.ErrUnauthorized.Response()), nil
		}
		return next(c)
	})

	api.Get("/users/:id", func(c *router.Context) (*response.Response, error) {
		svc, _ := router.ServiceAs[*users](c)
		u, ok := svc.get(c.Param("id"))
		if !ok {
			return nil, response.ErrNotFound.WithMessage("user not found")
		}
		return c.JSON(u)
	})

	api.Post("/users", func(c *router.Context) (*response.Response, error) {
		res := c.Validate(validator.Struct[user]())
		if err := res.Err(); err != nil {
			return nil, err
		}
		u := res.Data.(user)
		u.ID = newID()

		svc, _ := router.ServiceAs[*users](c)
		svc.add(u)
		return c.JSON(u, response.WithStatus(http.StatusCreated))
	})

	return api
}
