// Package gdrive implements drivefm.Gateway against the Google Drive v3 REST API.
//
// # Usage
//
//	import (
//	    "github.com/c2fo/drivefm/gdrive"
//	    "github.com/c2fo/drivefm/options/scope"
//	)
//
//	func ListFolder(ctx context.Context, token, folderID string) ([]drivefm.FileRecord, error) {
//	    gw, err := gdrive.NewGateway(token)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return gw.List(ctx, scope.WithContainer(folderID))
//	}
//
// # Authentication
//
// The gateway is handed an OAuth2 access token that somebody else minted. It attaches the token to every request and
// never refreshes it: once the token expires, calls fail with an error matching drivefm.ErrAuth and the caller must
// construct a new Gateway with a fresh token.
//
// # Limitations
//
// 1. Listings return the first page only (100 files by default, see WithPageSize).
//
// 2. Uploads use a resumable session but are never resumed. A failed transfer leaves nothing behind that the gateway
// will reuse; the caller restarts the upload from the beginning.
//
// 3. Rate limited requests are not retried. drivefm.IsTransient identifies them.
//
// 4. Thumbnail links returned in a FileRecord only work with the same credential. ResolveThumbnail fetches them on
// the caller's behalf.
package gdrive
