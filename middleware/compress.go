package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"mime"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/core/router"
)

// Supported content encodings.
const (
	EncodingBrotli = "br"
	EncodingGzip   = "gzip"
)

// CompressConfig configures the response compression middleware.
type CompressConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(c *router.Context) bool

	// MinSize is the smallest body worth compressing in bytes (default: 1KB)
	MinSize int

	// GzipLevel is the gzip compression level (default: gzip.DefaultCompression)
	GzipLevel int

	// BrotliLevel is the brotli quality, 0 to 11 (default: 4, suited to dynamic content)
	BrotliLevel int

	// DisableBrotli limits negotiation to gzip
	DisableBrotli bool

	// DisableGzip limits negotiation to brotli
	DisableGzip bool

	// ExcludeContentTypes lists media types that are already compressed
	// (default: common image, video, audio and archive types)
	ExcludeContentTypes []string
}

// Compress creates a compression middleware with default configuration.
// Brotli is preferred over gzip when the client accepts both.
func Compress() router.MiddlewareFunc {
	return CompressWithConfig(CompressConfig{})
}

// CompressWithConfig creates a compression middleware with custom configuration.
// Responses are buffered, so the body is encoded in one pass after the chain
// returns. Bodies below MinSize, responses that already carry a
// Content-Encoding and excluded content types are sent as is.
func CompressWithConfig(cfg CompressConfig) router.MiddlewareFunc {
	if cfg.MinSize <= 0 {
		cfg.MinSize = 1024
	}
	if cfg.GzipLevel == 0 {
		cfg.GzipLevel = gzip.DefaultCompression
	}
	if cfg.BrotliLevel <= 0 {
		cfg.BrotliLevel = 4
	}
	cfg.BrotliLevel = min(cfg.BrotliLevel, brotli.BestCompression)

	if cfg.ExcludeContentTypes == nil {
		cfg.ExcludeContentTypes = []string{
			"image/jpeg", "image/png", "image/gif", "image/webp",
			"video/mp4", "audio/mpeg",
			"application/zip", "application/gzip", "application/x-brotli",
		}
	}
	excluded := make(map[string]bool, len(cfg.ExcludeContentTypes))
	for _, ct := range cfg.ExcludeContentTypes {
		excluded[ct] = true
	}

	return func(c *router.Context, next router.HandlerFunc) (*response.Response, error) {
		if cfg.Skip != nil && cfg.Skip(c) {
			return next(c)
		}

		resp, err := next(c)
		out := outgoing(c, resp)
		if err != nil || out == nil {
			return resp, err
		}

		out.Header.Add("Vary", "Accept-Encoding")

		if len(out.Body) < cfg.MinSize || out.Header.Get("Content-Encoding") != "" {
			return resp, nil
		}
		if mediaType, _, perr := mime.ParseMediaType(out.Header.Get("Content-Type")); perr == nil && excluded[mediaType] {
			return resp, nil
		}

		encoding := negotiateEncoding(c.Request().Header.Get("Accept-Encoding"), !cfg.DisableBrotli, !cfg.DisableGzip)
		if encoding == "" {
			return resp, nil
		}

		body, cerr := encode(encoding, out.Body, cfg)
		if cerr != nil {
			c.Logger().Warn("response compression failed",
				logger.Component("http"),
				slog.String("encoding", encoding),
				logger.Error(cerr),
			)
			return resp, nil
		}

		out.Body = body
		out.Header.Set("Content-Encoding", encoding)
		out.Header.Set("Content-Length", strconv.Itoa(len(body)))
		return resp, nil
	}
}

// negotiateEncoding picks the encoding from an Accept-Encoding header.
// Codings with q=0 are refused; brotli wins ties.
func negotiateEncoding(header string, allowBrotli, allowGzip bool) string {
	var brQ, gzQ float64 = -1, -1
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case EncodingBrotli:
			brQ = q
		case EncodingGzip:
			gzQ = q
		case "*":
			if brQ < 0 {
				brQ = q
			}
			if gzQ < 0 {
				gzQ = q
			}
		}
	}

	if !allowBrotli {
		brQ = -1
	}
	if !allowGzip {
		gzQ = -1
	}

	switch {
	case brQ > 0 && brQ >= gzQ:
		return EncodingBrotli
	case gzQ > 0:
		return EncodingGzip
	default:
		return ""
	}
}

func encode(encoding string, body []byte, cfg CompressConfig) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser

	switch encoding {
	case EncodingBrotli:
		w = brotli.NewWriterLevel(&buf, cfg.BrotliLevel)
	default:
		gz, err := gzip.NewWriterLevel(&buf, cfg.GzipLevel)
		if err != nil {
			return nil, err
		}
		w = gz
	}

	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
