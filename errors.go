package drivefm

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a type that allows for error constants below
type Error string

// Error returns a string representation of the error
func (e Error) Error() string { return string(e) }

const (
	// ErrInvalidArgument - A local precondition failed. Nothing was sent upstream.
	ErrInvalidArgument = Error("invalid argument")

	// ErrAuth - The bearer credential is missing or was rejected. Retrying will not help; the caller must
	// re-authenticate.
	ErrAuth = Error("authentication failed")

	// ErrRateLimited - The remote store throttled the request. The failure is transient.
	ErrRateLimited = Error("rate limited")

	// ErrList - Listing files failed.
	ErrList = Error("list failed")

	// ErrUploadSession - The remote store did not open a resumable upload session.
	ErrUploadSession = Error("upload session failed")

	// ErrUploadTransfer - The upload session was open but the payload transfer failed.
	ErrUploadTransfer = Error("upload transfer failed")

	// ErrRename - Renaming a file failed.
	ErrRename = Error("rename failed")

	// ErrDelete - Deleting a file failed.
	ErrDelete = Error("delete failed")

	// ErrDownload - Opening a file's byte stream failed.
	ErrDownload = Error("download failed")

	// ErrThumbnailUnavailable - No thumbnail could be produced. Callers render a placeholder.
	ErrThumbnailUnavailable = Error("thumbnail unavailable")
)

// OpError describes a failed gateway operation. It matches, through errors.Is, the operation sentinel in Op, the
// classification in Class when there is one, and the underlying error.
type OpError struct {
	// Op is the operation sentinel, e.g. ErrRename.
	Op Error

	// Class is ErrAuth or ErrRateLimited when the upstream status says so, otherwise empty.
	Class Error

	// StatusCode is the upstream HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the raw upstream response body, possibly empty.
	Body []byte

	// Err is the underlying cause, if any.
	Err error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Op)
	if e.Class != "" {
		msg += " (" + string(e.Class) + ")"
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes Op, Class and Err to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, 3)
	if e.Op != "" {
		errs = append(errs, e.Op)
	}
	if e.Class != "" {
		errs = append(errs, e.Class)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsTransient reports whether err is a failure worth retrying later, i.e. the remote store rate limited the call.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAmbiguous reports whether err leaves the outcome of a mutating call unknown: the remote store answered with a
// server error, or no response was received at all. Local precondition failures are never ambiguous.
func IsAmbiguous(err error) bool {
	var opErr *OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.StatusCode == 0 {
		return opErr.Err != nil && !errors.Is(opErr.Err, ErrInvalidArgument)
	}
	return opErr.StatusCode >= http.StatusInternalServerError
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.StatusCode
	}
	return 0
}

// InvalidArgument returns an ErrInvalidArgument error with the given reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
