package server

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/dmitrymomot/relay/core/config"
)

// Defaults used by New and DefaultConfig. WriteTimeout bounds the whole
// middleware chain, since relay buffers the response before writing it.
const (
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
)

// Config is the environment-loadable form of the server options.
// Zero durations and sizes fall back to the defaults above.
type Config struct {
	Addr              string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxHeaderBytes    int           `env:"SERVER_MAX_HEADER_BYTES" envDefault:"1048576"`

	// TLS is enabled only when both files are set.
	TLSCertFile string `env:"SERVER_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"SERVER_TLS_KEY_FILE"`
}

// DefaultConfig mirrors the envDefault tags of Config.
func DefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
	}
}

func (c Config) validate() error {
	if c.Addr == "" {
		return ErrMissingAddress
	}
	for name, d := range map[string]time.Duration{
		"read header": c.ReadHeaderTimeout,
		"read":        c.ReadTimeout,
		"write":       c.WriteTimeout,
		"idle":        c.IdleTimeout,
		"shutdown":    c.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: negative %s timeout %s", ErrInvalidConfig, name, d)
		}
	}
	if c.ReadTimeout > 0 && c.ReadHeaderTimeout > c.ReadTimeout {
		return fmt.Errorf("%w: read header timeout %s exceeds read timeout %s",
			ErrInvalidConfig, c.ReadHeaderTimeout, c.ReadTimeout)
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("%w: negative max header bytes", ErrInvalidConfig)
	}
	return nil
}

// options translates the non-zero fields of c into Options.
func (c Config) options() ([]Option, error) {
	var opts []Option
	set := func(d time.Duration, opt func(time.Duration) Option) {
		if d > 0 {
			opts = append(opts, opt(d))
		}
	}
	set(c.ReadHeaderTimeout, WithReadHeaderTimeout)
	set(c.ReadTimeout, WithReadTimeout)
	set(c.WriteTimeout, WithWriteTimeout)
	set(c.IdleTimeout, WithIdleTimeout)
	set(c.ShutdownTimeout, WithShutdownTimeout)
	if c.MaxHeaderBytes > 0 {
		opts = append(opts, WithMaxHeaderBytes(c.MaxHeaderBytes))
	}

	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w from %s, %s: %w", ErrFailedLoadCert, c.TLSCertFile, c.TLSKeyFile, err)
		}
		opts = append(opts, WithTLS(&tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}))
	}
	return opts, nil
}

// NewFromConfig creates a Server from cfg. opts are applied after the
// config, so they win.
func NewFromConfig(cfg Config, opts ...Option) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfgOpts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	return New(cfg.Addr, append(cfgOpts, opts...)...), nil
}

// NewFromEnv loads Config with core/config (.env included) and creates a
// Server from it.
func NewFromEnv(opts ...Option) (*Server, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}
