package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/transport"
)

// DefaultThumbnailContentType is reported for thumbnail link bytes served without a content type.
const DefaultThumbnailContentType = "image/jpeg"

var (
	errEmptyThumbnail   = errors.New("empty thumbnail body")
	errNoThumbnailRoute = errors.New("no thumbnail source applies")
)

// thumbnailAttempt is one way of producing preview bytes. Attempts are tried in order and the first success wins.
type thumbnailAttempt struct {
	source  drivefm.ThumbnailSource
	applies func(f *drive.File) bool
	fetch   func(ctx context.Context, f *drive.File) (*drivefm.Thumbnail, error)
}

// thumbnailAttempts returns the attempts in priority order: the dedicated thumbnail link always comes before the
// full content of the file.
func (g *Gateway) thumbnailAttempts() []thumbnailAttempt {
	return []thumbnailAttempt{
		{
			source:  drivefm.SourceThumbnailLink,
			applies: func(f *drive.File) bool { return f.ThumbnailLink != "" },
			fetch:   g.fetchThumbnailLink,
		},
		{
			source:  drivefm.SourceOriginal,
			applies: g.smallImage,
			fetch:   g.fetchOriginal,
		},
	}
}

// ResolveThumbnail returns preview bytes for file id. It fails with drivefm.ErrThumbnailUnavailable when the file's
// metadata cannot be read or when no attempt produces bytes.
func (g *Gateway) ResolveThumbnail(ctx context.Context, id string) (*drivefm.Thumbnail, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	f, err := g.service.Files.Get(id).
		Fields(thumbnailFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, callError(drivefm.ErrThumbnailUnavailable, err)
	}
	if f.Id == "" {
		f.Id = id
	}

	return g.resolve(ctx, f, g.thumbnailAttempts())
}

func (g *Gateway) resolve(ctx context.Context, f *drive.File, attempts []thumbnailAttempt) (*drivefm.Thumbnail, error) {
	var errs []error
	for _, a := range attempts {
		if !a.applies(f) {
			continue
		}
		thumb, err := a.fetch(ctx, f)
		if err == nil {
			thumb.Source = a.source
			return thumb, nil
		}
		g.logger.Debug("thumbnail attempt failed",
			slog.String("id", f.Id),
			slog.String("source", string(a.source)),
			slog.Any("error", err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", a.source, err))
		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		errs = append(errs, errNoThumbnailRoute)
	}
	return nil, &drivefm.OpError{Op: drivefm.ErrThumbnailUnavailable, Err: errors.Join(errs...)}
}

// fetchThumbnailLink downloads the thumbnail Drive generated for the file. The link needs the same credential.
func (g *Gateway) fetchThumbnailLink(ctx context.Context, f *drive.File) (*drivefm.Thumbnail, error) {
	resp, err := g.client.Fetch(ctx, &transport.Request{Method: http.MethodGet, URL: f.ThumbnailLink})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err()
	}
	if len(resp.Body) == 0 {
		return nil, errEmptyThumbnail
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultThumbnailContentType
	}
	return &drivefm.Thumbnail{Data: resp.Body, ContentType: contentType}, nil
}

// smallImage reports whether the file is an image whose full content may stand in for a thumbnail.
func (g *Gateway) smallImage(f *drive.File) bool {
	if !strings.HasPrefix(f.MimeType, "image/") {
		return false
	}
	if g.options.MaxFallbackBytes <= 0 {
		return true
	}
	n, known := fileSize(f).Bytes()
	return !known || n <= g.options.MaxFallbackBytes
}

// fetchOriginal downloads the full file content, giving up once it exceeds the fallback cap.
func (g *Gateway) fetchOriginal(ctx context.Context, f *drive.File) (*drivefm.Thumbnail, error) {
	resp, err := g.service.Files.Get(f.Id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var r io.Reader = resp.Body
	limit := g.options.MaxFallbackBytes
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit+1)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	if buf.Len() == 0 {
		return nil, errEmptyThumbnail
	}

	return &drivefm.Thumbnail{Data: buf.Bytes(), ContentType: f.MimeType}, nil
}
