package proxy

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Proxy Handler
// ============================================================

// Заголовки, которые не пробрасываются между клиентом и upstream.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
	"Content-Length":    true,
}

type Proxy struct {
	http   *resty.Client
	logger *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{
		http:   resty.New().SetTimeout(timeout),
		logger: logger.With(zap.String("component", "proxy")),
	}
}

// Mount проксирует все под prefix на upstream, отрезая prefix:
// /api/v1/editor/floors/1 -> {upstream}/floors/1.
func (p *Proxy) Mount(prefix, upstream string) fiber.Handler {
	upstream = strings.TrimRight(upstream, "/")
	return func(c fiber.Ctx) error {
		rest := strings.TrimPrefix(c.Path(), prefix)
		if rest == "" {
			rest = "/"
		}
		return p.Forward(c, upstream+rest)
	}
}

// To проксирует запрос на фиксированный URL.
func (p *Proxy) To(targetURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.Forward(c, targetURL)
	}
}

// Forward проксирует любой метод как есть: тело (включая multipart с boundary),
// Content-Type, Authorization и query.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	if q := string(c.Request().URI().QueryString()); q != "" {
		targetURL += "?" + q
	}

	req := p.http.R().SetContext(c.Context())
	for _, name := range []string{"Content-Type", "Authorization", "Accept"} {
		if v := c.Get(name); v != "" {
			req.SetHeader(name, v)
		}
	}
	if body := c.Body(); len(body) > 0 {
		req.SetBody(append([]byte(nil), body...))
	}

	start := time.Now()
	resp, err := req.Execute(c.Method(), targetURL)
	if err != nil {
		p.logger.Error("upstream unreachable",
			zap.String("method", c.Method()),
			zap.String("target", targetURL),
			zap.Error(err),
		)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}

	p.logger.Debug("proxied",
		zap.String("method", c.Method()),
		zap.String("target", targetURL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	for key, values := range resp.Header() {
		if len(values) > 0 && !hopHeaders[http.CanonicalHeaderKey(key)] {
			c.Set(key, values[0])
		}
	}
	c.Status(resp.StatusCode())
	return c.Send(resp.Body())
}

// Ping: проверка готовности upstream для /health/ready.
func (p *Proxy) Ping(url string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := p.http.R().SetContext(ctx).Get(url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return &StatusError{URL: url, Status: resp.StatusCode()}
		}
		return nil
	}
}

type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return e.URL + ": " + http.StatusText(e.Status)
}
