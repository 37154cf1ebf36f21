package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/config"
	"github.com/c2fo/drivefm/mocks"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
	"github.com/c2fo/drivefm/options/upload"
)

const bearer = "Bearer ya29.user-token"

var modified = time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)

func inFolder(id string) interface{} {
	return mock.MatchedBy(func(o options.CallOption) bool {
		_, isContainer := o.(*scope.Container)
		return isContainer && scope.From([]options.CallOption{o}) == id
	})
}

func withLength(n int64) interface{} {
	return mock.MatchedBy(func(o options.CallOption) bool {
		_, isLength := o.(*upload.ContentLength)
		return isLength && upload.LengthFrom([]options.CallOption{o}) == n
	})
}

type serverSuite struct {
	suite.Suite
	gw      *mocks.Gateway
	tokens  []string
	handler http.Handler
	cfg     *config.Config
}

func TestServer(t *testing.T) {
	suite.Run(t, new(serverSuite))
}

func (s *serverSuite) SetupTest() {
	s.gw = mocks.NewGateway(s.T())
	s.tokens = nil

	s.cfg = config.Default()
	s.cfg.FolderID = "folder-1"
	s.cfg.HTTP.MaxUploadBytes = 1 << 20
	s.cfg.Thumbnail.MaxEdge = 64

	factory := func(token string) (drivefm.Gateway, error) {
		s.tokens = append(s.tokens, token)
		return s.gw, nil
	}
	s.handler = New(s.cfg, slog.New(slog.DiscardHandler), factory).Handler()
}

func (s *serverSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *serverSuite) authed(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", bearer)
	return req
}

func (s *serverSuite) errorMessage(rec *httptest.ResponseRecorder) string {
	var body errorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func (s *serverSuite) TestRequiresBearer() {
	for _, auth := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := s.do(req)
		s.Equal(http.StatusUnauthorized, rec.Code, auth)
		s.Equal("Unauthorized", s.errorMessage(rec))
	}
	s.Empty(s.tokens, "no gateway is built without a credential")
}

func (s *serverSuite) TestGatewayFactoryFailure() {
	h := New(s.cfg, slog.New(slog.DiscardHandler), func(string) (drivefm.Gateway, error) {
		return nil, drivefm.ErrAuth
	}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, s.authed(http.MethodGet, "/api/files", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *serverSuite) TestListFiles() {
	s.gw.EXPECT().List(mock.Anything, inFolder("folder-1")).Return([]drivefm.FileRecord{
		{ID: "f1", Name: "a.txt", ContentType: "text/plain", Size: drivefm.KnownSize(3), ModifiedAt: modified},
		{ID: "d1", Name: "Photos", ContentType: "application/vnd.google-apps.folder", ModifiedAt: modified},
	}, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal([]string{"ya29.user-token"}, s.tokens)
	s.JSONEq(`{"files":[
		{"id":"f1","name":"a.txt","mimeType":"text/plain","size":"3","modifiedTime":"2024-04-01T09:30:00Z"},
		{"id":"d1","name":"Photos","mimeType":"application/vnd.google-apps.folder","modifiedTime":"2024-04-01T09:30:00Z"}
	]}`, rec.Body.String())
}

func (s *serverSuite) TestListFilesEmpty() {
	s.gw.EXPECT().List(mock.Anything, mock.Anything).Return(nil, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"files":[]}`, rec.Body.String())
}

func (s *serverSuite) TestListFilesFailures() {
	testCases := []struct {
		description string
		err         error
		status      int
		message     string
	}{
		{
			description: "expired credential",
			err:         &drivefm.OpError{Op: drivefm.ErrList, Class: drivefm.ErrAuth, StatusCode: 401},
			status:      http.StatusUnauthorized,
			message:     "Authentication failed. Please sign out and sign in again.",
		},
		{
			description: "rate limited",
			err:         &drivefm.OpError{Op: drivefm.ErrList, Class: drivefm.ErrRateLimited, StatusCode: 429},
			status:      http.StatusTooManyRequests,
			message:     "Too many requests to Google Drive, try again later",
		},
		{
			description: "upstream error",
			err:         &drivefm.OpError{Op: drivefm.ErrList, StatusCode: 500},
			status:      http.StatusBadGateway,
			message:     "Failed to fetch files",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.description, func() {
			s.gw.EXPECT().List(mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			rec := s.do(s.authed(http.MethodGet, "/api/files", nil))
			s.Equal(tc.status, rec.Code)
			s.Equal(tc.message, s.errorMessage(rec))
		})
	}
}

func multipartBody(s *suite.Suite, field, filename, contentType, content string) (io.Reader, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, err = io.WriteString(part, content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())
	return buf, mw.FormDataContentType()
}

func (s *serverSuite) TestUploadFile() {
	var uploaded string
	s.gw.EXPECT().
		Upload(mock.Anything, "notes.txt", "text/plain", mock.Anything, inFolder("folder-1"), withLength(11)).
		RunAndReturn(func(_ context.Context, name, contentType string, payload io.Reader, _ ...options.CallOption) (drivefm.FileRecord, error) {
			data, err := io.ReadAll(payload)
			if err != nil {
				return drivefm.FileRecord{}, err
			}
			uploaded = string(data)
			return drivefm.FileRecord{ID: "f9", Name: name, ContentType: contentType, Size: drivefm.KnownSize(11), ModifiedAt: modified}, nil
		}).Once()

	body, contentType := multipartBody(&s.Suite, "file", "notes.txt", "text/plain", "hello world")
	req := s.authed(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("hello world", uploaded)
	s.JSONEq(`{"file":{"id":"f9","name":"notes.txt","mimeType":"text/plain","size":"11","modifiedTime":"2024-04-01T09:30:00Z"}}`,
		rec.Body.String())
}

func (s *serverSuite) TestUploadWithoutFile() {
	body, contentType := multipartBody(&s.Suite, "other", "notes.txt", "text/plain", "x")
	req := s.authed(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("No file provided", s.errorMessage(rec))

	rec = s.do(s.authed(http.MethodPost, "/api/files", strings.NewReader(`{"name":"x"}`)))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *serverSuite) TestUploadTooLarge() {
	body, contentType := multipartBody(&s.Suite, "file", "big.bin", "application/octet-stream", strings.Repeat("x", 2<<20))
	req := s.authed(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}

func (s *serverSuite) TestUploadFailure() {
	s.gw.EXPECT().Upload(mock.Anything, "a.txt", "text/plain", mock.Anything, mock.Anything, mock.Anything).
		Return(drivefm.FileRecord{}, &drivefm.OpError{Op: drivefm.ErrUploadTransfer, StatusCode: 503}).Once()

	before := testutil.ToFloat64(gatewayFailuresTotal.WithLabelValues("upload", "upstream_5xx"))

	body, contentType := multipartBody(&s.Suite, "file", "a.txt", "text/plain", "x")
	req := s.authed(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Failed to upload file", s.errorMessage(rec))
	s.Equal(before+1, testutil.ToFloat64(gatewayFailuresTotal.WithLabelValues("upload", "upstream_5xx")))
}

func (s *serverSuite) TestDownloadFile() {
	s.gw.EXPECT().Download(mock.Anything, "f1").Return(&drivefm.Download{
		Body:        io.NopCloser(strings.NewReader("%PDF")),
		ContentType: drivefm.DefaultContentType,
		Size:        drivefm.KnownSize(4),
	}, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/f1", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/octet-stream", rec.Header().Get("Content-Type"))
	s.Equal("attachment", rec.Header().Get("Content-Disposition"))
	s.Equal("4", rec.Header().Get("Content-Length"))
	s.Equal("%PDF", rec.Body.String())
}

func (s *serverSuite) TestDownloadNotFound() {
	s.gw.EXPECT().Download(mock.Anything, "nope").
		Return(nil, &drivefm.OpError{Op: drivefm.ErrDownload, StatusCode: 404}).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/nope", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Failed to download file", s.errorMessage(rec))
}

func (s *serverSuite) TestRenameFile() {
	s.gw.EXPECT().Rename(mock.Anything, "f1", "b.txt").
		Return(drivefm.FileRecord{ID: "f1", Name: "b.txt", ContentType: "text/plain", ModifiedAt: modified}, nil).Once()

	rec := s.do(s.authed(http.MethodPatch, "/api/files/f1", strings.NewReader(`{"name":"b.txt"}`)))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"file":{"id":"f1","name":"b.txt","mimeType":"text/plain","modifiedTime":"2024-04-01T09:30:00Z"}}`,
		rec.Body.String())
}

func (s *serverSuite) TestRenameRequiresName() {
	for _, body := range []string{`{}`, `{"name":""}`, `not json`, ``} {
		rec := s.do(s.authed(http.MethodPatch, "/api/files/f1", strings.NewReader(body)))
		s.Equal(http.StatusBadRequest, rec.Code, body)
		s.Equal("Name is required", s.errorMessage(rec))
	}
}

func (s *serverSuite) TestRenameFailure() {
	s.gw.EXPECT().Rename(mock.Anything, "f1", "b.txt").
		Return(drivefm.FileRecord{}, &drivefm.OpError{Op: drivefm.ErrRename, StatusCode: 500}).Once()

	rec := s.do(s.authed(http.MethodPatch, "/api/files/f1", strings.NewReader(`{"name":"b.txt"}`)))
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("Failed to rename file: rename failed: status 500", s.errorMessage(rec))
}

func (s *serverSuite) TestDeleteFile() {
	s.gw.EXPECT().Delete(mock.Anything, "f1").Return(nil).Once()

	rec := s.do(s.authed(http.MethodDelete, "/api/files/f1", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success":true}`, rec.Body.String())
}

func (s *serverSuite) TestDeleteForbidden() {
	s.gw.EXPECT().Delete(mock.Anything, "f1").
		Return(&drivefm.OpError{Op: drivefm.ErrDelete, StatusCode: 403}).Once()

	before := testutil.ToFloat64(gatewayFailuresTotal.WithLabelValues("delete", "upstream_4xx"))
	rec := s.do(s.authed(http.MethodDelete, "/api/files/f1", nil))
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("Failed to delete file", s.errorMessage(rec))
	s.Equal(before+1, testutil.ToFloat64(gatewayFailuresTotal.WithLabelValues("delete", "upstream_4xx")))
}

func (s *serverSuite) TestThumbnailFromLink() {
	s.gw.EXPECT().ResolveThumbnail(mock.Anything, "f1").Return(&drivefm.Thumbnail{
		Data:        []byte("jpeg-bytes"),
		ContentType: "image/jpeg",
		Source:      drivefm.SourceThumbnailLink,
	}, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/f1/thumbnail", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("image/jpeg", rec.Header().Get("Content-Type"))
	s.Equal("public, max-age=3600", rec.Header().Get("Cache-Control"))
	s.Equal("jpeg-bytes", rec.Body.String())
}

func encodePNG(s *suite.Suite, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	s.Require().NoError(png.Encode(buf, img))
	return buf.Bytes()
}

func (s *serverSuite) TestThumbnailFromOriginalIsDownscaled() {
	s.gw.EXPECT().ResolveThumbnail(mock.Anything, "f1").Return(&drivefm.Thumbnail{
		Data:        encodePNG(&s.Suite, 256, 128),
		ContentType: "image/png",
		Source:      drivefm.SourceOriginal,
	}, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/f1/thumbnail", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("image/jpeg", rec.Header().Get("Content-Type"))

	img, err := imaging.Decode(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	s.Equal(64, img.Bounds().Dx())
	s.Equal(32, img.Bounds().Dy())
}

func (s *serverSuite) TestThumbnailOriginalPassThrough() {
	small := encodePNG(&s.Suite, 16, 16)
	s.gw.EXPECT().ResolveThumbnail(mock.Anything, "small").Return(&drivefm.Thumbnail{
		Data: small, ContentType: "image/png", Source: drivefm.SourceOriginal,
	}, nil).Once()
	s.gw.EXPECT().ResolveThumbnail(mock.Anything, "svg").Return(&drivefm.Thumbnail{
		Data: []byte("<svg/>"), ContentType: "image/svg+xml", Source: drivefm.SourceOriginal,
	}, nil).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/small/thumbnail", nil))
	s.Equal("image/png", rec.Header().Get("Content-Type"))
	s.Equal(small, rec.Body.Bytes())

	rec = s.do(s.authed(http.MethodGet, "/api/files/svg/thumbnail", nil))
	s.Equal("image/svg+xml", rec.Header().Get("Content-Type"))
	s.Equal("<svg/>", rec.Body.String())
}

func (s *serverSuite) TestThumbnailUnavailable() {
	s.gw.EXPECT().ResolveThumbnail(mock.Anything, "f1").
		Return(nil, &drivefm.OpError{Op: drivefm.ErrThumbnailUnavailable}).Once()

	rec := s.do(s.authed(http.MethodGet, "/api/files/f1/thumbnail", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("No thumbnail available", s.errorMessage(rec))
}

func (s *serverSuite) TestHealthAndMetrics() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok","version":"`+config.Version+`"}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `drivefm_http_requests_total{method="GET",path="/health/live",status="200"}`)
}

func (s *serverSuite) TestRequestID() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	s.Len(rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = s.do(req)
	s.Equal("req-123", rec.Header().Get(RequestIDHeader))
}

func (s *serverSuite) TestStreamingTimeouts() {
	srv := New(config.Default(), slog.New(slog.DiscardHandler), func(string) (drivefm.Gateway, error) { return s.gw, nil })

	s.Zero(srv.httpServer.ReadTimeout)
	s.Zero(srv.httpServer.WriteTimeout)
	s.Equal(10*time.Second, srv.httpServer.ReadHeaderTimeout)
}

func (s *serverSuite) TestServeShutsDownOnCancel() {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	srv := New(s.cfg, slog.New(slog.DiscardHandler), func(string) (drivefm.Gateway, error) { return s.gw, nil })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	s.Eventually(func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(5 * time.Second):
		s.Fail("server did not shut down")
	}
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{drivefm.InvalidArgument("x"), http.StatusBadRequest},
		{&drivefm.OpError{Op: drivefm.ErrRename, Class: drivefm.ErrAuth, StatusCode: 401}, http.StatusUnauthorized},
		{&drivefm.OpError{Op: drivefm.ErrList, Class: drivefm.ErrRateLimited, StatusCode: 403}, http.StatusTooManyRequests},
		{&drivefm.OpError{Op: drivefm.ErrThumbnailUnavailable, StatusCode: 404}, http.StatusNotFound},
		{&drivefm.OpError{Op: drivefm.ErrThumbnailUnavailable, Class: drivefm.ErrAuth, StatusCode: 401}, http.StatusUnauthorized},
		{&drivefm.OpError{Op: drivefm.ErrDelete, StatusCode: 404}, http.StatusNotFound},
		{&drivefm.OpError{Op: drivefm.ErrDelete, StatusCode: 403}, http.StatusForbidden},
		{&drivefm.OpError{Op: drivefm.ErrUploadSession, StatusCode: 400}, http.StatusBadGateway},
		{&drivefm.OpError{Op: drivefm.ErrDownload, Err: errors.New("reset")}, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		if got := statusFor(tc.err); got != tc.status {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestFailureClass(t *testing.T) {
	testCases := map[string]error{
		"invalid_argument":  drivefm.InvalidArgument("x"),
		"auth":              &drivefm.OpError{Op: drivefm.ErrList, Class: drivefm.ErrAuth, StatusCode: 401},
		"rate_limited":      &drivefm.OpError{Op: drivefm.ErrList, Class: drivefm.ErrRateLimited, StatusCode: 429},
		"no_response":       &drivefm.OpError{Op: drivefm.ErrList, Err: errors.New("reset")},
		"upstream_5xx":      &drivefm.OpError{Op: drivefm.ErrList, StatusCode: 502},
		"upstream_4xx":      &drivefm.OpError{Op: drivefm.ErrList, StatusCode: 404},
		"unusable_response": &drivefm.OpError{Op: drivefm.ErrList, StatusCode: 200},
	}

	for expected, err := range testCases {
		if got := failureClass(err); got != expected {
			t.Errorf("failureClass(%v) = %q, want %q", err, got, expected)
		}
	}
}
