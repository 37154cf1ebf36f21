package gdrive

import (
	"log/slog"
	"net/http"

	"github.com/c2fo/drivefm/options"
)

const (
	optionNameEndpoint         = "endpoint"
	optionNameUploadEndpoint   = "uploadEndpoint"
	optionNameHTTPTransport    = "httpTransport"
	optionNamePageSize         = "pageSize"
	optionNameMaxFallbackBytes = "maxFallbackBytes"
	optionNameUserAgent        = "userAgent"
	optionNameLogger           = "logger"
	optionNameOptions          = "options"
)

// WithEndpoint sets the Drive v3 API base URL. Mostly useful for pointing the gateway at a test server.
func WithEndpoint(endpoint string) options.NewGatewayOption[Gateway] {
	return &endpointOpt{endpoint: endpoint}
}

type endpointOpt struct {
	endpoint string
}

func (o *endpointOpt) Apply(g *Gateway) {
	g.options.Endpoint = o.endpoint
}

func (o *endpointOpt) NewGatewayOptionName() string {
	return optionNameEndpoint
}

// WithUploadEndpoint sets the base URL upload sessions are opened against.
func WithUploadEndpoint(endpoint string) options.NewGatewayOption[Gateway] {
	return &uploadEndpointOpt{endpoint: endpoint}
}

type uploadEndpointOpt struct {
	endpoint string
}

func (o *uploadEndpointOpt) Apply(g *Gateway) {
	g.options.UploadEndpoint = o.endpoint
}

func (o *uploadEndpointOpt) NewGatewayOptionName() string {
	return optionNameUploadEndpoint
}

// WithHTTPTransport sets the round tripper authenticated requests are sent through. Defaults to
// http.DefaultTransport.
func WithHTTPTransport(rt http.RoundTripper) options.NewGatewayOption[Gateway] {
	return &httpTransportOpt{rt: rt}
}

type httpTransportOpt struct {
	rt http.RoundTripper
}

func (o *httpTransportOpt) Apply(g *Gateway) {
	g.base = o.rt
}

func (o *httpTransportOpt) NewGatewayOptionName() string {
	return optionNameHTTPTransport
}

// WithPageSize sets the maximum number of files returned by List.
// Default is 100.
func WithPageSize(size int) options.NewGatewayOption[Gateway] {
	return &pageSizeOpt{size: size}
}

type pageSizeOpt struct {
	size int
}

func (o *pageSizeOpt) Apply(g *Gateway) {
	g.options.PageSize = o.size
}

func (o *pageSizeOpt) NewGatewayOptionName() string {
	return optionNamePageSize
}

// WithMaxFallbackBytes sets the largest image ResolveThumbnail will download in full.
// Default is 10 MiB.
func WithMaxFallbackBytes(n int64) options.NewGatewayOption[Gateway] {
	return &maxFallbackBytesOpt{n: n}
}

type maxFallbackBytesOpt struct {
	n int64
}

func (o *maxFallbackBytesOpt) Apply(g *Gateway) {
	g.options.MaxFallbackBytes = o.n
}

func (o *maxFallbackBytesOpt) NewGatewayOptionName() string {
	return optionNameMaxFallbackBytes
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) options.NewGatewayOption[Gateway] {
	return &userAgentOpt{ua: ua}
}

type userAgentOpt struct {
	ua string
}

func (o *userAgentOpt) Apply(g *Gateway) {
	g.options.UserAgent = o.ua
}

func (o *userAgentOpt) NewGatewayOptionName() string {
	return optionNameUserAgent
}

// WithLogger sets the logger the gateway reports recovered and failed operations to. By default nothing is logged.
func WithLogger(logger *slog.Logger) options.NewGatewayOption[Gateway] {
	return &loggerOpt{logger: logger}
}

type loggerOpt struct {
	logger *slog.Logger
}

func (o *loggerOpt) Apply(g *Gateway) {
	if o.logger != nil {
		g.logger = o.logger
	}
}

func (o *loggerOpt) NewGatewayOptionName() string {
	return optionNameLogger
}

// WithOptions replaces all Options at once. Empty endpoints and a zero page size fall back to their defaults.
func WithOptions(opts Options) options.NewGatewayOption[Gateway] {
	return &optionsOpt{opts: opts}
}

type optionsOpt struct {
	opts Options
}

func (o *optionsOpt) Apply(g *Gateway) {
	g.options = o.opts
}

func (o *optionsOpt) NewGatewayOptionName() string {
	return optionNameOptions
}
