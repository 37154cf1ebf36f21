package gdrive

import (
	"strings"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/transport"
)

const (
	// recordFields are the file fields every FileRecord is built from.
	recordFields = "id,name,mimeType,size,modifiedTime,thumbnailLink,webViewLink"

	listFields = "files(" + recordFields + ")"

	thumbnailFields = "id,mimeType,size,thumbnailLink"
)

// fileSize returns the size of f. Drive omits size for files without stored content (folders, native Docs) and
// drive.File cannot tell an omitted size from zero, so a zero size is reported as unknown.
func fileSize(f *drive.File) drivefm.Size {
	if f.Size > 0 {
		return drivefm.KnownSize(f.Size)
	}
	return drivefm.UnknownSize
}

func fileRecord(f *drive.File) drivefm.FileRecord {
	contentType := f.MimeType
	if contentType == "" {
		contentType = drivefm.DefaultContentType
	}
	return drivefm.FileRecord{
		ID:           f.Id,
		Name:         f.Name,
		ContentType:  contentType,
		Size:         fileSize(f),
		ModifiedAt:   parseTime(f.ModifiedTime),
		ThumbnailRef: f.ThumbnailLink,
		ViewRef:      f.WebViewLink,
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// decodeFile decodes a file resource from a response read through the raw transport.
func decodeFile(resp *transport.Response) (*drive.File, error) {
	var f drive.File
	if err := resp.DecodeJSON(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// records converts a listing, keeping the first occurrence of any repeated id.
func records(files []*drive.File) []drivefm.FileRecord {
	out := make([]drivefm.FileRecord, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f == nil || f.Id == "" {
			continue
		}
		if _, dup := seen[f.Id]; dup {
			continue
		}
		seen[f.Id] = struct{}{}
		out = append(out, fileRecord(f))
	}
	return out
}

// listQuery builds the Drive search expression for a listing.
func listQuery(container string) string {
	if container == "" {
		return "trashed=false"
	}
	return "'" + escapeQuery(container) + "' in parents and trashed=false"
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// escapeQuery escapes a string literal for the Drive query language.
func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
