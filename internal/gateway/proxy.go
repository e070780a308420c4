package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/objgate/internal"
	"github.com/dmitrymomot/objgate/pkg/auth"
	"github.com/dmitrymomot/objgate/pkg/logger"
	"github.com/dmitrymomot/objgate/pkg/metrics"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// DefaultResponseHeaderTimeout bounds the wait for upstream response headers.
// The body itself is streamed without a deadline.
const DefaultResponseHeaderTimeout = 30 * time.Second

type tenantKey struct{}

// TenantExtractor adds "tenant" to log records made while serving a proxied request.
func TenantExtractor() logger.ContextExtractor {
	return logger.ContextKeyExtractor(tenantKey{}, "tenant")
}

// Proxy serves <prefix>/<configKey>/<objectKey...> by authenticating the
// caller, resolving a presigned link and streaming the object back.
type Proxy struct {
	gate               *auth.Gate
	links              Resolver
	client             *http.Client
	metrics            *metrics.Metrics
	prefix             string
	rewriteContentType bool
}

// ProxyOption configures a Proxy.
type ProxyOption func(*Proxy)

// WithHTTPClient replaces the client used for upstream requests.
func WithHTTPClient(c *http.Client) ProxyOption {
	return func(p *Proxy) {
		if c != nil {
			p.client = c
		}
	}
}

// WithContentTypeRewrite infers Content-Type from the object key when the
// upstream type is missing or application/octet-stream.
func WithContentTypeRewrite(enabled bool) ProxyOption {
	return func(p *Proxy) {
		p.rewriteContentType = enabled
	}
}

// WithProxyMetrics records request outcomes and auth denials.
func WithProxyMetrics(m *metrics.Metrics) ProxyOption {
	return func(p *Proxy) {
		p.metrics = m
	}
}

// NewProxy creates a Proxy for paths under prefix.
func NewProxy(prefix string, gate *auth.Gate, links Resolver, opts ...ProxyOption) *Proxy {
	p := &Proxy{
		gate:   gate,
		links:  links,
		prefix: prefix,
		client: NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHTTPClient returns the upstream client. Compression is disabled so
// Content-Length and Content-Encoding reach the caller unchanged.
func NewHTTPClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableCompression = true
	t.MaxIdleConnsPerHost = 32
	t.ResponseHeaderTimeout = DefaultResponseHeaderTimeout
	return &http.Client{Transport: t}
}

// Routes claims every path so that requests outside the prefix get a 400.
func (p *Proxy) Routes(r internal.Router) {
	r.Any("/*", p.Serve)
}

// Serve handles one proxied request.
func (p *Proxy) Serve(c internal.Context) (err error) {
	start := time.Now()
	defer func() {
		p.metrics.ObserveRequest(Outcome(err), time.Since(start))
	}()

	configKey, objectKey, err := p.split(c.Request().URL.Path)
	if err != nil {
		return err
	}
	c.Set(tenantKey{}, configKey)

	if err := p.gate.Check(c.Context(), c.Request().Header, configKey); err != nil {
		p.metrics.AuthDenied(p.gate.Policy().Name())
		if errors.Is(err, auth.ErrLookupFailed) {
			c.LogWarn("session lookup failed", "error", err)
		}
		return err
	}

	link, err := p.links.Resolve(c.Context(), configKey, objectKey)
	if err != nil {
		return err
	}

	return p.stream(c, link, objectKey)
}

// split strips the prefix and cuts the rest at the first slash.
func (p *Proxy) split(path string) (configKey, objectKey string, err error) {
	rest, ok := strings.CutPrefix(path, p.prefix)
	if !ok {
		return "", "", ErrPrefixMismatch
	}
	configKey, objectKey, _ = strings.Cut(strings.TrimLeft(rest, "/"), "/")
	if objectKey == "" {
		return configKey, "", ErrMissingObjectKey
	}
	return configKey, objectKey, nil
}

func (p *Proxy) stream(c internal.Context, link, objectKey string) error {
	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if rng := c.Header("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	h := c.Response().Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	if p.rewriteContentType && storage.IsGenericType(resp.Header.Get("Content-Type")) {
		h.Set("Content-Type", storage.ContentTypeByKey(objectKey))
	}
	if q := c.Request().URL.Query(); q.Has("filename") {
		h.Set("Content-Disposition", storage.ContentDisposition(q.Get("filename")))
	}

	rw := c.ResponseWriter()
	rw.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(rw, resp.Body); err != nil {
		if ctxErr := c.Context().Err(); ctxErr != nil {
			c.LogDebug("client went away while streaming", "error", errors.Join(ctxErr, err))
			return nil
		}
		return fmt.Errorf("%w: stream: %w", ErrUpstream, err)
	}
	return nil
}
