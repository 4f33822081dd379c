package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"roombooking/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// Options configures NewDefaultGateway. Zero values pick the defaults.
type Options struct {
	Timeout    time.Duration // 0 leaves requests unbounded
	RatePerSec int           // 0 disables client-side throttling
	Burst      int
	CSRFCookie string
	CSRFHeader string
	Transport  http.RoundTripper
	Logger     *zap.Logger
}

// DefaultGateway talks to the API over net/http with a cookie jar carrying
// the session and anti-forgery cookies.
type DefaultGateway struct {
	BaseURL    *url.URL
	Client     *http.Client
	Limiter    *rate.Limiter
	CSRFCookie string
	CSRFHeader string
	Logger     *zap.Logger
}

func NewDefaultGateway(baseURL string, opts Options) (*DefaultGateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid base url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	g := &DefaultGateway{
		BaseURL:    u,
		Client:     &http.Client{Jar: jar, Timeout: opts.Timeout, Transport: opts.Transport},
		CSRFCookie: opts.CSRFCookie,
		CSRFHeader: opts.CSRFHeader,
		Logger:     opts.Logger,
	}
	if g.CSRFCookie == "" {
		g.CSRFCookie = "csrftoken"
	}
	if g.CSRFHeader == "" {
		g.CSRFHeader = "X-CSRFToken"
	}
	if g.Logger == nil {
		g.Logger = utils.GetLogger()
	}
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		g.Limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return g, nil
}

// CSRFToken reads the anti-forgery cookie the server set for BaseURL.
func (g *DefaultGateway) CSRFToken() string {
	if g.Client == nil || g.Client.Jar == nil {
		return ""
	}
	for _, c := range g.Client.Jar.Cookies(g.BaseURL) {
		if c.Name == g.CSRFCookie {
			if v, err := url.QueryUnescape(c.Value); err == nil {
				return v
			}
			return c.Value
		}
	}
	return ""
}

// Do is Send without extra headers.
func (g *DefaultGateway) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	return g.Send(ctx, Request{Method: method, Path: path, Body: body})
}

func (g *DefaultGateway) Send(ctx context.Context, r Request) (*Response, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	ref, err := url.Parse(r.Path)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid path %q: %w", r.Path, err)
	}
	target := g.BaseURL.ResolveReference(ref)

	var payload io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if !safeMethods[method] && req.Header.Get(g.CSRFHeader) == "" {
		if token := g.CSRFToken(); token != "" {
			req.Header.Set(g.CSRFHeader, token)
		}
	}

	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("gateway: throttled: %w", err)
		}
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.Logger.Warn("gateway: transport failure", zap.String("method", method), zap.String("url", target.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, target.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	out := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Raw:    raw,
		IsJSON: strings.Contains(resp.Header.Get("Content-Type"), "application/json"),
	}
	data, err := out.parse()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.Logger.Debug("gateway: request failed", zap.String("method", method), zap.String("url", target.String()), zap.Int("status", resp.StatusCode))
		return nil, &RequestFailed{Status: resp.StatusCode, Data: data}
	}
	return out, nil
}

// Response is a successful, fully read response.
type Response struct {
	Status int
	Header http.Header
	Raw    []byte
	IsJSON bool
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if !r.IsJSON {
		return errors.New("gateway: response is not JSON")
	}
	if len(r.Raw) == 0 {
		return errors.New("gateway: empty response body")
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

func (r *Response) parse() (interface{}, error) {
	if !r.IsJSON {
		return string(r.Raw), nil
	}
	if len(bytes.TrimSpace(r.Raw)) == 0 {
		return nil, nil
	}
	var data interface{}
	if err := json.Unmarshal(r.Raw, &data); err != nil {
		return nil, fmt.Errorf("gateway: decode %d response: %w", r.Status, err)
	}
	return data, nil
}
