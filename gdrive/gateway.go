package gdrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/transport"
	"github.com/c2fo/drivefm/utils"
)

// Gateway implements drivefm.Gateway for Google Drive. It is safe for concurrent use: every call builds its own
// requests and nothing is cached between calls.
type Gateway struct {
	client  *transport.Client
	service *drive.Service
	options Options
	base    http.RoundTripper
	logger  *slog.Logger
}

var _ drivefm.Gateway = (*Gateway)(nil)

// NewGateway returns a Gateway that authenticates every request with token. An empty token fails with
// drivefm.ErrAuth before anything is sent.
func NewGateway(token string, opts ...options.NewGatewayOption[Gateway]) (*Gateway, error) {
	g := &Gateway{
		options: NewOptions(),
		logger:  slog.New(slog.DiscardHandler),
	}

	options.ApplyOptions(g, opts...)

	if err := g.normalizeOptions(); err != nil {
		return nil, err
	}

	client, err := transport.NewClient(token,
		transport.WithBaseTransport(g.base),
		transport.WithUserAgent(g.options.UserAgent),
	)
	if err != nil {
		if errors.Is(err, transport.ErrMissingCredential) {
			return nil, fmt.Errorf("%w: %w", drivefm.ErrAuth, err)
		}
		return nil, err
	}
	g.client = client

	svc, err := drive.NewService(context.Background(),
		option.WithHTTPClient(client.HTTPClient()),
		option.WithEndpoint(g.options.Endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}
	svc.UserAgent = g.options.UserAgent
	g.service = svc

	g.logger = g.logger.With(slog.String("component", "gdrive"))

	return g, nil
}

// Options returns the effective options of the gateway.
func (g *Gateway) Options() Options {
	return g.options
}

func (g *Gateway) normalizeOptions() error {
	defaults := NewOptions()
	if g.options.Endpoint == "" {
		g.options.Endpoint = defaults.Endpoint
	}
	if g.options.UploadEndpoint == "" {
		g.options.UploadEndpoint = defaults.UploadEndpoint
	}
	if g.options.PageSize <= 0 {
		g.options.PageSize = defaults.PageSize
	}
	if g.options.PageSize > maxPageSize {
		return drivefm.InvalidArgument("page size %d exceeds %d", g.options.PageSize, maxPageSize)
	}

	for _, ep := range []*string{&g.options.Endpoint, &g.options.UploadEndpoint} {
		u, err := url.Parse(*ep)
		if err != nil || !u.IsAbs() {
			return drivefm.InvalidArgument("endpoint %q is not an absolute URL", *ep)
		}
		*ep = utils.EnsureTrailingSlash(*ep)
	}
	return nil
}

// maxPageSize is the largest page Drive serves.
const maxPageSize = 1000

func (g *Gateway) fileURL(id string) string {
	return g.options.Endpoint + "files/" + url.PathEscape(id)
}

func (g *Gateway) uploadURL() string {
	return g.options.UploadEndpoint + "files"
}

// getFile reads the metadata of file id, restricted to fields, keeping the raw status and body.
func (g *Gateway) getFile(ctx context.Context, id, fields string) (*transport.Response, error) {
	return g.client.Fetch(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    g.fileURL(id),
		Query:  url.Values{"fields": []string{fields}, "supportsAllDrives": []string{"true"}},
	})
}

func requireID(id string) error {
	if utils.IsBlank(id) {
		return drivefm.InvalidArgument("file id is empty")
	}
	return nil
}
