// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production backend.
	DefaultBaseURL = "https://api.baatcheet.app"

	// DefaultAPIPrefix is the versioned path prefix prepended to every endpoint.
	DefaultAPIPrefix = "/api/v1"

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "baatcheet-cli"

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024
)

// Timeouts holds the per-class call timeouts.
type Timeouts struct {
	Default time.Duration
	Upload  time.Duration
	Image   time.Duration
}

// DefaultTimeouts returns 30s for ordinary calls, 120s for uploads and
// 180s for image generation.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Default: 30 * time.Second,
		Upload:  120 * time.Second,
		Image:   180 * time.Second,
	}
}

// For returns the timeout for class c.
func (t Timeouts) For(c Class) time.Duration {
	switch c {
	case ClassUpload:
		return t.Upload
	case ClassImage:
		return t.Image
	default:
		return t.Default
	}
}

// TokenSource supplies the bearer token for authenticated calls. An empty
// token with a nil error means no session; the call proceeds unauthenticated.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// BearerToken implements TokenSource.
func (s StaticToken) BearerToken(context.Context) (string, error) {
	return string(s), nil
}

// AuthMode overrides an endpoint's auth flag for a single request.
type AuthMode int

const (
	// AuthDefault uses the endpoint's own flag.
	AuthDefault AuthMode = iota
	// AuthRequired attaches the token when one is available.
	AuthRequired
	// AuthNone never attaches the token.
	AuthNone
)

// Request describes one JSON call.
type Request struct {
	Endpoint Endpoint
	// Method overrides Endpoint.Method when non-empty.
	Method string
	Query  url.Values
	// Body is marshaled to JSON with keys rewritten to snake_case.
	Body   any
	Auth   AuthMode
	Header http.Header
}

// PERFORMANCE: Connection pooling shared by every Client that is not given
// its own http.Client. Timeouts are applied per call through the context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// Client is the transport client. It is safe for concurrent use; all
// configuration is set through the With* methods before first use.
type Client struct {
	baseURL    string
	prefix     string
	userAgent  string
	timeouts   Timeouts
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a client for baseURL. tokens may be nil, in which case
// every call is unauthenticated.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		prefix:     DefaultAPIPrefix,
		userAgent:  DefaultUserAgent,
		timeouts:   DefaultTimeouts(),
		tokens:     tokens,
		httpClient: sharedHTTPClient,
		logger:     zap.NewNop(),
	}
}

// WithAPIPrefix sets the versioned path prefix. An empty prefix is allowed.
func (c *Client) WithAPIPrefix(prefix string) *Client {
	c.prefix = "/" + strings.Trim(prefix, "/")
	if c.prefix == "/" {
		c.prefix = ""
	}
	return c
}

// WithTimeouts replaces the per-class timeouts. Zero fields keep their defaults.
func (c *Client) WithTimeouts(t Timeouts) *Client {
	def := DefaultTimeouts()
	if t.Default <= 0 {
		t.Default = def.Default
	}
	if t.Upload <= 0 {
		t.Upload = def.Upload
	}
	if t.Image <= 0 {
		t.Image = def.Image
	}
	c.timeouts = t
	return c
}

// WithHTTPClient replaces the shared pooled client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithRateLimit throttles outgoing calls to rps requests per second.
// A non-positive rps disables throttling.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger sets the logger used for request/response records.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger.Named("api")
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeouts returns the effective per-class timeouts.
func (c *Client) Timeouts() Timeouts {
	return c.timeouts
}

// =============================================================================
// REQUESTS
// =============================================================================

// Do performs a JSON call and decodes a 2xx body into out. out may be nil
// when the caller only cares about success.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body io.Reader
	contentType := ""
	if req.Body != nil {
		data, err := EncodeJSON(req.Body)
		if err != nil {
			return &Error{Kind: KindDecoding, Message: "encode request body", Err: err}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, req, body, contentType, out)
}

// Upload performs a multipart/form-data call: one file part, then fields in
// slice order.
func (c *Client) Upload(ctx context.Context, ep Endpoint, file File, fields []FormField, out any) error {
	data, contentType, err := encodeMultipart(file, fields)
	if err != nil {
		return &Error{Kind: KindDecoding, Message: "encode multipart body", Err: err}
	}
	return c.send(ctx, Request{Endpoint: ep}, bytes.NewReader(data), contentType, out)
}

func (c *Client) send(ctx context.Context, req Request, body io.Reader, contentType string, out any) error {
	ep := req.Endpoint
	target, err := c.resolve(ep, req.Query)
	if err != nil {
		return err
	}

	method := req.Method
	if method == "" {
		method = ep.Method
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.For(ep.Class))
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindNetwork, Message: "rate limiter", Err: err}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Kind: KindInvalidURL, Message: ep.Name, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.wantsAuth(ep, req.Auth) {
		if token := c.bearer(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	status, data, err := c.exchange(httpReq)
	// SECURITY: drop the token from the request before anything can log it.
	httpReq.Header.Del("Authorization")
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("endpoint", ep.Name),
			zap.String("method", method),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return err
	}
	c.logger.Debug("request",
		zap.String("endpoint", ep.Name),
		zap.String("method", method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))

	return decodeResponse(status, data, out)
}

// roundTrip sends req and reads the whole body.
func (c *Client) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindInvalidResponse, Status: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, data, nil
}

func (c *Client) wantsAuth(ep Endpoint, mode AuthMode) bool {
	switch mode {
	case AuthRequired:
		return true
	case AuthNone:
		return false
	default:
		return ep.Auth
	}
}

// bearer reads the token once. A store failure is logged and the call
// continues without credentials; the server answers 401 if it needs them.
func (c *Client) bearer(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.BearerToken(ctx)
	if err != nil {
		c.logger.Warn("token unavailable", zap.Error(err))
		return ""
	}
	return token
}

// resolve joins base URL, prefix and endpoint path.
func (c *Client) resolve(ep Endpoint, query url.Values) (string, error) {
	if err := ep.Validate(); err != nil {
		return "", err
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", &Error{Kind: KindInvalidURL, Message: ep.Name, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return "", &Error{Kind: KindInvalidURL, Message: fmt.Sprintf("base URL %q is not absolute", c.baseURL)}
	}
	raw := c.baseURL + c.prefix + ep.Path
	u, err := url.Parse(raw)
	if err != nil {
		return "", &Error{Kind: KindInvalidURL, Message: ep.Name, Err: err}
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// readResponse reads the body up to MaxResponseSize.
// SECURITY: an oversize body is rejected rather than truncated.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, errors.New("response exceeded maximum size")
	}
	return body, nil
}

// decodeResponse applies the status classification.
func decodeResponse(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return classifyStatus(status, body)
	}
	// An empty 2xx body (204 and friends) leaves out untouched.
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := DecodeJSON(body, out); err != nil {
		return &Error{Kind: KindDecoding, Status: status, Err: err}
	}
	return nil
}
