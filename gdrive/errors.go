package gdrive

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/transport"
)

var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// classify maps an upstream status, and the reasons Drive attached to it, to ErrAuth, ErrRateLimited or nothing.
func classify(status int, gerr *googleapi.Error) drivefm.Error {
	switch status {
	case http.StatusUnauthorized:
		return drivefm.ErrAuth
	case http.StatusTooManyRequests:
		return drivefm.ErrRateLimited
	case http.StatusForbidden:
		if gerr == nil {
			return ""
		}
		for _, item := range gerr.Errors {
			if rateLimitReasons[item.Reason] {
				return drivefm.ErrRateLimited
			}
		}
	}
	return ""
}

// responseError builds the failure of op from a non-2xx response.
func responseError(op drivefm.Error, resp *transport.Response) *drivefm.OpError {
	cause := resp.Err()
	var gerr *googleapi.Error
	errors.As(cause, &gerr)
	return &drivefm.OpError{
		Op:         op,
		Class:      classify(resp.StatusCode, gerr),
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Err:        cause,
	}
}

// callError builds the failure of op from an error returned by the transport or the Drive SDK. SDK errors carry the
// upstream status and body; anything else means no response was received.
func callError(op drivefm.Error, err error) *drivefm.OpError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &drivefm.OpError{
			Op:         op,
			Class:      classify(gerr.Code, gerr),
			StatusCode: gerr.Code,
			Body:       []byte(gerr.Body),
			Err:        err,
		}
	}
	return &drivefm.OpError{Op: op, Err: err}
}

// decodeError is the failure of op when a 2xx response body could not be used.
func decodeError(op drivefm.Error, resp *transport.Response, err error) *drivefm.OpError {
	return &drivefm.OpError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Err:        err,
	}
}
