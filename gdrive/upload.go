package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
	"github.com/c2fo/drivefm/options/upload"
	"github.com/c2fo/drivefm/transport"
)

var (
	errNoSessionLocation = errors.New("upload session response has no Location header")
	errNoFileID          = errors.New("upload response has no file id")
)

// uploadState is the position of an upload in its two-phase protocol.
type uploadState int

const (
	uploadNoSession uploadState = iota
	uploadSessionOpen
	uploadTransferred
	uploadFailed
)

func (s uploadState) String() string {
	switch s {
	case uploadNoSession:
		return "no session"
	case uploadSessionOpen:
		return "session open"
	case uploadTransferred:
		return "transferred"
	case uploadFailed:
		return "failed"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// uploadRequest is what the caller asked to store.
type uploadRequest struct {
	name        string
	contentType string
	container   string
	length      int64 // -1 when unknown
	payload     io.Reader
}

// resumableUpload drives one upload through NoSession -> SessionOpen -> Transferred, or into Failed from either step.
// Each step only runs from the state that precedes it.
type resumableUpload struct {
	g          *Gateway
	req        uploadRequest
	state      uploadState
	sessionURL string
	record     drivefm.FileRecord
	err        error
}

// Upload stores payload as a new file. The session is opened with the metadata first, then the payload is sent in a
// single request to the session URL. A failed transfer is not resumed.
func (g *Gateway) Upload(ctx context.Context, name, contentType string, payload io.Reader,
	opts ...options.CallOption) (drivefm.FileRecord, error) {
	if name == "" {
		return drivefm.FileRecord{}, drivefm.InvalidArgument("file name is empty")
	}
	if payload == nil {
		return drivefm.FileRecord{}, drivefm.InvalidArgument("payload is nil")
	}
	if contentType == "" {
		contentType = drivefm.DefaultContentType
	}

	u := &resumableUpload{
		g: g,
		req: uploadRequest{
			name:        name,
			contentType: contentType,
			container:   scope.From(opts),
			length:      upload.LengthFrom(opts),
			payload:     payload,
		},
	}
	u.openSession(ctx)
	u.transfer(ctx)

	if u.state != uploadTransferred {
		g.logger.Debug("upload failed", slog.String("name", name), slog.Any("error", u.err))
		return drivefm.FileRecord{}, u.err
	}
	return u.record, nil
}

func (u *resumableUpload) fail(err error) {
	u.state = uploadFailed
	u.err = err
}

func (u *resumableUpload) openSession(ctx context.Context) {
	if u.state != uploadNoSession {
		return
	}

	meta := struct {
		Name     string   `json:"name"`
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents,omitempty"`
	}{Name: u.req.name, MimeType: u.req.contentType}
	if u.req.container != "" {
		meta.Parents = []string{u.req.container}
	}

	body, n, err := transport.JSONBody(meta)
	if err != nil {
		u.fail(&drivefm.OpError{Op: drivefm.ErrUploadSession, Err: err})
		return
	}

	header := transport.JSONHeader()
	header.Set("X-Upload-Content-Type", u.req.contentType)
	if u.req.length >= 0 {
		header.Set("X-Upload-Content-Length", strconv.FormatInt(u.req.length, 10))
	}

	resp, err := u.g.client.Fetch(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    u.g.uploadURL(),
		Query: url.Values{
			"uploadType":        []string{"resumable"},
			"fields":            []string{recordFields},
			"supportsAllDrives": []string{"true"},
		},
		Header:        header,
		Body:          body,
		ContentLength: n,
	})
	if err != nil {
		u.fail(callError(drivefm.ErrUploadSession, err))
		return
	}
	if !resp.OK() {
		u.fail(responseError(drivefm.ErrUploadSession, resp))
		return
	}

	location := resp.Header.Get("Location")
	if location == "" {
		u.fail(decodeError(drivefm.ErrUploadSession, resp, errNoSessionLocation))
		return
	}
	if loc, err := url.Parse(location); err != nil || !loc.IsAbs() {
		u.fail(decodeError(drivefm.ErrUploadSession, resp, fmt.Errorf("invalid session location %q", location)))
		return
	}

	u.sessionURL = location
	u.state = uploadSessionOpen
}

func (u *resumableUpload) transfer(ctx context.Context) {
	if u.state != uploadSessionOpen {
		return
	}

	body := u.req.payload
	if u.req.length == 0 {
		body = http.NoBody
	}

	resp, err := u.g.client.Fetch(ctx, &transport.Request{
		Method:        http.MethodPut,
		URL:           u.sessionURL,
		Header:        http.Header{"Content-Type": []string{u.req.contentType}},
		Body:          body,
		ContentLength: u.req.length,
	})
	if err != nil {
		u.fail(callError(drivefm.ErrUploadTransfer, err))
		return
	}
	if !resp.OK() {
		u.fail(responseError(drivefm.ErrUploadTransfer, resp))
		return
	}

	f, err := decodeFile(resp)
	if err != nil {
		u.fail(decodeError(drivefm.ErrUploadTransfer, resp, err))
		return
	}
	if f.Id == "" {
		u.fail(decodeError(drivefm.ErrUploadTransfer, resp, errNoFileID))
		return
	}
	if f.MimeType == "" {
		f.MimeType = u.req.contentType
	}

	u.record = fileRecord(f)
	u.state = uploadTransferred
}
