package gdrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/transport"
)

var errUnusableRenameBody = errors.New("rename response does not describe the renamed file")

// Rename sets the display name of file id.
//
// Drive sometimes answers a rename with a server error although the new name was applied. When the PATCH fails with
// a 5xx, or succeeds with a body that does not describe the renamed file, Rename reads the file back once. If the
// name it reads equals newName the rename is reported as successful. The PATCH itself is never sent twice.
func (g *Gateway) Rename(ctx context.Context, id, newName string) (drivefm.FileRecord, error) {
	if err := requireID(id); err != nil {
		return drivefm.FileRecord{}, err
	}
	if newName == "" {
		return drivefm.FileRecord{}, drivefm.InvalidArgument("new name for %q is empty", id)
	}

	body, n, err := transport.JSONBody(map[string]string{"name": newName})
	if err != nil {
		return drivefm.FileRecord{}, &drivefm.OpError{Op: drivefm.ErrRename, Err: err}
	}

	resp, err := g.client.Fetch(ctx, &transport.Request{
		Method:        http.MethodPatch,
		URL:           g.fileURL(id),
		Query:         url.Values{"fields": []string{recordFields}, "supportsAllDrives": []string{"true"}},
		Header:        transport.JSONHeader(),
		Body:          body,
		ContentLength: n,
	})
	if err != nil {
		// nothing came back, so there is no status to decide on
		return drivefm.FileRecord{}, callError(drivefm.ErrRename, err)
	}

	if resp.OK() {
		if rec, ok := renamedRecord(resp, id, newName); ok {
			return rec, nil
		}
	} else if !resp.ServerError() {
		return drivefm.FileRecord{}, responseError(drivefm.ErrRename, resp)
	}

	rec, verr := g.verifyRename(ctx, id, newName)
	if verr != nil {
		g.logger.Debug("rename verification failed",
			slog.String("id", id),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", verr),
		)
		return drivefm.FileRecord{}, renameFailure(resp, verr)
	}

	g.logger.Warn("recovered rename after ambiguous response",
		slog.String("id", id),
		slog.String("name", newName),
		slog.Int("status", resp.StatusCode),
	)
	return rec, nil
}

// renamedRecord decodes a 2xx rename body. It is usable only when it names the file that was renamed and carries
// the requested name.
func renamedRecord(resp *transport.Response, id, newName string) (drivefm.FileRecord, bool) {
	f, err := decodeFile(resp)
	if err != nil {
		return drivefm.FileRecord{}, false
	}
	if f.Id != id || f.Name != newName {
		return drivefm.FileRecord{}, false
	}
	return fileRecord(f), true
}

// verifyRename reads file id once and returns its record if its name is newName.
func (g *Gateway) verifyRename(ctx context.Context, id, newName string) (drivefm.FileRecord, error) {
	resp, err := g.getFile(ctx, id, recordFields)
	if err != nil {
		return drivefm.FileRecord{}, err
	}
	if !resp.OK() {
		return drivefm.FileRecord{}, resp.Err()
	}

	f, err := decodeFile(resp)
	if err != nil {
		return drivefm.FileRecord{}, err
	}
	if f.Name != newName {
		return drivefm.FileRecord{}, fmt.Errorf("file %q is named %q, not %q", id, f.Name, newName)
	}
	if f.Id == "" {
		f.Id = id
	}
	return fileRecord(f), nil
}

// renameFailure reports the original PATCH response, with the verification failure attached.
func renameFailure(resp *transport.Response, verr error) error {
	opErr := responseError(drivefm.ErrRename, resp)
	if resp.OK() {
		opErr.Err = errUnusableRenameBody
	}
	opErr.Err = errors.Join(opErr.Err, fmt.Errorf("verification: %w", verr))
	return opErr
}
