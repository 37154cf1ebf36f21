package drivefm

import (
	"context"
	"io"

	"github.com/c2fo/drivefm/options"
)

// Gateway is the storage gateway. Each method is an independent call against the remote store: implementations hold
// no state between calls and impose no ordering between concurrent calls.
type Gateway interface {
	// List returns the non-deleted files, most recently modified first, capped at one page. scope.WithContainer
	// restricts the listing to a single container.
	List(ctx context.Context, opts ...options.CallOption) ([]FileRecord, error)

	// Upload stores payload as a new file named name with the declared content type and returns its record. Either a
	// complete file exists when Upload returns a record, or Upload fails with ErrUploadSession or ErrUploadTransfer.
	// Accepts scope.WithContainer for the destination and upload.WithContentLength when the size is known.
	Upload(ctx context.Context, name, contentType string, payload io.Reader, opts ...options.CallOption) (FileRecord, error)

	// Rename changes the display name of file id. On success the returned record's Name equals newName.
	Rename(ctx context.Context, id, newName string) (FileRecord, error)

	// Delete removes file id.
	Delete(ctx context.Context, id string) error

	// Download opens the raw byte stream of file id. The caller must close the returned Body.
	Download(ctx context.Context, id string) (*Download, error)

	// ResolveThumbnail returns preview bytes for file id, or ErrThumbnailUnavailable when none can be produced.
	ResolveThumbnail(ctx context.Context, id string) (*Thumbnail, error)
}

// Download is a pass-through stream of a remote file's bytes.
type Download struct {
	// Body streams the file content. It is not buffered; closing it releases the connection.
	Body io.ReadCloser

	// ContentType is the content type callers should set on any outward response.
	ContentType string

	// Size is the length reported by the remote store, when it reported one.
	Size Size
}

// Close closes the underlying stream.
func (d *Download) Close() error {
	if d == nil || d.Body == nil {
		return nil
	}
	return d.Body.Close()
}

// ThumbnailSource records which strategy produced a Thumbnail.
type ThumbnailSource string

const (
	// SourceThumbnailLink means the bytes came from the remote store's dedicated thumbnail link.
	SourceThumbnailLink ThumbnailSource = "thumbnailLink"

	// SourceOriginal means the bytes are the full content of a (small) image file.
	SourceOriginal ThumbnailSource = "original"
)

// Thumbnail holds preview bytes for a file.
type Thumbnail struct {
	Data        []byte
	ContentType string
	Source      ThumbnailSource
}
