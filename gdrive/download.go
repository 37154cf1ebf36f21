package gdrive

import (
	"context"

	"github.com/c2fo/drivefm"
)

// Download opens the byte stream of file id. The stream is handed over unread; closing it is the caller's job.
func (g *Gateway) Download(ctx context.Context, id string) (*drivefm.Download, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	resp, err := g.service.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, callError(drivefm.ErrDownload, err)
	}

	size := drivefm.UnknownSize
	if resp.ContentLength >= 0 {
		size = drivefm.KnownSize(resp.ContentLength)
	}

	return &drivefm.Download{
		Body:        resp.Body,
		ContentType: drivefm.DefaultContentType,
		Size:        size,
	}, nil
}
