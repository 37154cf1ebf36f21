package gdrive

import (
	"context"

	"github.com/c2fo/drivefm"
)

// Delete permanently removes file id. Drive answers 204 on success; a missing file is reported as a failure with
// status 404 rather than treated as already deleted.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	if err := g.service.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return callError(drivefm.ErrDelete, err)
	}
	return nil
}
