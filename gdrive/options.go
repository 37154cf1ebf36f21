package gdrive

const (
	// DefaultEndpoint is the Drive v3 metadata endpoint.
	DefaultEndpoint = "https://www.googleapis.com/drive/v3/"

	// DefaultUploadEndpoint is the Drive v3 media upload endpoint.
	DefaultUploadEndpoint = "https://www.googleapis.com/upload/drive/v3/"

	// DefaultPageSize is the number of files a listing asks for.
	DefaultPageSize = 100

	// DefaultMaxFallbackBytes caps the size of an image file fetched in full as its own thumbnail.
	DefaultMaxFallbackBytes = 10 * 1024 * 1024
)

// Options holds configuration options for the Drive Gateway.
type Options struct {
	// Endpoint is the base URL of the Drive v3 API (default: DefaultEndpoint).
	Endpoint string

	// UploadEndpoint is the base URL uploads are sent to (default: DefaultUploadEndpoint).
	UploadEndpoint string

	// PageSize is the maximum number of files returned by List (default: 100). Drive allows at most 1000.
	PageSize int

	// MaxFallbackBytes is the largest image file ResolveThumbnail will download in full when Drive has no thumbnail
	// for it (default: 10 MiB). Zero or less disables the cap.
	MaxFallbackBytes int64

	// UserAgent is sent with every request when set.
	UserAgent string
}

// NewOptions creates Options with default values.
func NewOptions() Options {
	return Options{
		Endpoint:         DefaultEndpoint,
		UploadEndpoint:   DefaultUploadEndpoint,
		PageSize:         DefaultPageSize,
		MaxFallbackBytes: DefaultMaxFallbackBytes,
	}
}
