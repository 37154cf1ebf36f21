/*
Package drivefm is the storage-gateway layer of a browser file manager backed by Google Drive.

Philosophy

The file manager only ever needs a handful of operations against its remote store: list, upload, rename, delete,
download and resolve a thumbnail. Drive's REST API answers all of them, but not uniformly. Renames sometimes report a
server error after they took effect, thumbnail links come and go, uploads need a session before the bytes can move,
and sizes are simply absent for some types. Rather than leak those details into every handler, drivefm gives callers:

  * a single Gateway interface with one method per operation
  * an immutable FileRecord value returned by every operation
  * typed failures (see Error and OpError) that say which operation failed, with the upstream status and body, and
    whether the failure was an authentication problem or a rate limit
  * no state kept between calls, so a Gateway can be built per request around the caller's bearer credential

Usage

  import (
      "github.com/c2fo/drivefm/gdrive"
      "github.com/c2fo/drivefm/options/scope"
  )

  func ListFolder(ctx context.Context, token, folderID string) ([]drivefm.FileRecord, error) {
      gw, err := gdrive.NewGateway(token)
      if err != nil {
          return nil, err
      }
      return gw.List(ctx, scope.WithContainer(folderID))
  }

Errors

Every failure can be tested with errors.Is against the operation sentinel (ErrList, ErrRename, ...) and, when it
applies, against ErrAuth or ErrRateLimited:

  rec, err := gw.Rename(ctx, id, "report.pdf")
  switch {
  case errors.Is(err, drivefm.ErrAuth):
      // ask the user to sign in again
  case drivefm.IsTransient(err):
      // "try again later"
  case err != nil:
      // "contact support", the status and body are on the *OpError
  }

Packages

  * gdrive: the Google Drive implementation of Gateway
  * transport: authenticated HTTP primitives used by gdrive
  * viewstate: an in-memory collection of FileRecords kept in sync with gateway results
  * server: the HTTP API the browser talks to
  * config: environment and file based configuration for the server
*/
package drivefm
