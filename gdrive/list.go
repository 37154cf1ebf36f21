package gdrive

import (
	"context"
	"log/slog"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
)

// List returns the first page of non-trashed files, most recently modified first. With scope.WithContainer only the
// direct children of that folder are listed.
func (g *Gateway) List(ctx context.Context, opts ...options.CallOption) ([]drivefm.FileRecord, error) {
	container := scope.From(opts)

	listing, err := g.service.Files.List().
		Q(listQuery(container)).
		Fields(listFields).
		OrderBy("modifiedTime desc").
		PageSize(int64(g.options.PageSize)).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		g.logger.Debug("list failed", slog.String("container", container), slog.Any("error", err))
		return nil, callError(drivefm.ErrList, err)
	}
	return records(listing.Files), nil
}
