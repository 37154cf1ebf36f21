package drivefm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DefaultContentType is used when the remote store reports no MIME type for a file.
const DefaultContentType = "application/octet-stream"

// FileRecord is the normalized descriptor of a remote file. Records are values: operations return new records and
// never modify one that was already handed out.
type FileRecord struct {
	// ID is assigned by the remote store and never changes.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// ContentType is the MIME type. It is never empty on a record built by a gateway.
	ContentType string `json:"mimeType"`

	// Size is the content length, when the remote store reports one.
	Size Size `json:"size,omitzero"`

	// ModifiedAt never goes backwards across updates to the same ID.
	ModifiedAt time.Time `json:"modifiedTime"`

	// ThumbnailRef is an optional link to a preview image. Fetching it needs the same bearer credential that
	// produced the record.
	ThumbnailRef string `json:"thumbnailLink,omitempty"`

	// ViewRef is an optional link to the remote store's own viewer.
	ViewRef string `json:"webViewLink,omitempty"`
}

// NewerThan reports whether r was modified after other.
func (r FileRecord) NewerThan(other FileRecord) bool {
	return r.ModifiedAt.After(other.ModifiedAt)
}

// Size is an optional byte count. The zero value is an unknown size, which is distinct from a known size of zero.
type Size struct {
	n     int64
	known bool
}

// UnknownSize is the Size of a file whose length was not reported.
var UnknownSize = Size{}

// KnownSize returns a Size of n bytes.
func KnownSize(n int64) Size {
	return Size{n: n, known: true}
}

// Bytes returns the byte count and whether it is known.
func (s Size) Bytes() (int64, bool) {
	return s.n, s.known
}

// Known reports whether the size was reported.
func (s Size) Known() bool {
	return s.known
}

// IsZero reports whether the size is unknown. It lets `omitzero` drop unknown sizes from JSON.
func (s Size) IsZero() bool {
	return !s.known
}

// String renders the size in bytes, or "unknown".
func (s Size) String() string {
	if !s.known {
		return "unknown"
	}
	return strconv.FormatInt(s.n, 10)
}

// MarshalJSON encodes a known size as a decimal string, matching the remote API, and an unknown size as null.
func (s Size) MarshalJSON() ([]byte, error) {
	if !s.known {
		return []byte("null"), nil
	}
	return json.Marshal(strconv.FormatInt(s.n, 10))
}

// UnmarshalJSON accepts a decimal string, a number, or null.
func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = UnknownSize
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*s = UnknownSize
			return nil
		}
	} else {
		raw = string(data)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	if n < 0 {
		return fmt.Errorf("invalid size %q: negative", raw)
	}
	*s = KnownSize(n)
	return nil
}
