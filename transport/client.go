// Package transport holds the HTTP primitives the gateway is built on: bearer credential injection, JSON and binary
// request bodies, buffered responses for metadata calls and unbuffered responses for streams.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var (
	// ErrMissingCredential is returned by NewClient when the bearer token is empty.
	ErrMissingCredential = errors.New("bearer credential is required")

	errRequestRequired = errors.New("non-nil request is required")
	errMethodRequired  = errors.New("HTTP method is required")
)

// Client issues requests authenticated with a fixed bearer credential. The credential is never refreshed: an expired
// token surfaces as a 401 from the remote store.
type Client struct {
	httpClient *http.Client
	base       http.RoundTripper
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseTransport sets the round tripper that authenticated requests are sent through.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.base = rt
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient returns a Client that injects token as a bearer credential into every request.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	c := &Client{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(c)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	// no client-wide timeout: downloads stream for as long as the caller's context allows
	c.httpClient = &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.base},
	}
	return c, nil
}

// HTTPClient returns the authenticated *http.Client, for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Request describes a single outbound request.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   io.Reader

	// ContentLength is the body length when positive. Otherwise net/http measures the body itself when it can,
	// and sends it chunked when it cannot.
	ContentLength int64
}

// Do sends req and returns the response without checking its status. The response body is not read; the caller
// must close it.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	if req == nil {
		return nil, errRequestRequired
	}
	if req.Method == "" {
		return nil, errMethodRequired
	}

	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Method, err)
	}
	if req.ContentLength > 0 {
		httpReq.ContentLength = req.ContentLength
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	return c.httpClient.Do(httpReq)
}

// Response is a fully read response. It is used for metadata calls whose bodies are small and whose status must be
// inspected together with the body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// ServerError reports whether the status is 5xx.
func (r *Response) ServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode <= 599
}

// Err returns nil for a 2xx response, otherwise a *googleapi.Error decoded from the body.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return googleapi.CheckResponse(&http.Response{
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       io.NopCloser(bytes.NewReader(r.Body)),
	})
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Fetch sends req and reads the whole response body, whatever the status. Only a failure to get a response at all
// is returned as an error.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// JSONBody encodes v as a request body and returns it with its length.
func JSONBody(v any) (io.Reader, int64, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, 0, err
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	return bytes.NewReader(data), int64(len(data)), nil
}

// JSONHeader returns a header declaring a JSON body.
func JSONHeader() http.Header {
	return http.Header{"Content-Type": []string{"application/json; charset=UTF-8"}}
}

// ReadAllAndClose drains rc and closes it.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func buildURL(raw string, q url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request URL: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("invalid request URL %q: must be absolute", raw)
	}
	if len(q) > 0 {
		merged := u.Query()
		for k, values := range q {
			for _, v := range values {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}
