package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/api/googleapi"
)

type clientSuite struct {
	suite.Suite
	server   *httptest.Server
	lastReq  *http.Request
	lastBody []byte
	handler  http.HandlerFunc
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (s *clientSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.lastReq = r
		s.lastBody = body
		s.handler(w, r)
	}))
}

func (s *clientSuite) TearDownTest() {
	s.server.Close()
}

func (s *clientSuite) newClient(opts ...Option) *Client {
	opts = append([]Option{WithBaseTransport(s.server.Client().Transport)}, opts...)
	c, err := NewClient("token-123", opts...)
	s.Require().NoError(err)
	return c
}

func (s *clientSuite) TestNewClientRequiresToken() {
	for _, token := range []string{"", "   "} {
		c, err := NewClient(token)
		s.Nil(c)
		s.ErrorIs(err, ErrMissingCredential)
	}
}

func (s *clientSuite) TestBearerInjection() {
	c := s.newClient(WithUserAgent("drivefm-test"))

	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, URL: s.server.URL + "/files"})
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Equal("Bearer token-123", s.lastReq.Header.Get("Authorization"))
	s.Equal("drivefm-test", s.lastReq.Header.Get("User-Agent"))
}

func (s *clientSuite) TestDoMergesQueryAndHeaders() {
	c := s.newClient()

	body, n, err := JSONBody(map[string]string{"name": "a&b.txt"})
	s.Require().NoError(err)

	resp, err := c.Do(context.Background(), &Request{
		Method:        http.MethodPatch,
		URL:           s.server.URL + "/files/f1?alt=json",
		Query:         url.Values{"fields": []string{"id,name"}},
		Header:        JSONHeader(),
		Body:          body,
		ContentLength: n,
	})
	s.Require().NoError(err)
	_ = resp.Body.Close()

	s.Equal(http.MethodPatch, s.lastReq.Method)
	s.Equal("/files/f1", s.lastReq.URL.Path)
	s.Equal("json", s.lastReq.URL.Query().Get("alt"))
	s.Equal("id,name", s.lastReq.URL.Query().Get("fields"))
	s.Equal("application/json; charset=UTF-8", s.lastReq.Header.Get("Content-Type"))
	s.JSONEq(`{"name":"a&b.txt"}`, string(s.lastBody))
	s.EqualValues(n, s.lastReq.ContentLength)
}

func (s *clientSuite) TestDoValidation() {
	c := s.newClient()

	_, err := c.Do(context.Background(), nil)
	s.Error(err)

	_, err = c.Do(context.Background(), &Request{URL: s.server.URL})
	s.Error(err)

	_, err = c.Do(context.Background(), &Request{Method: http.MethodGet, URL: "/relative"})
	s.Error(err)
}

func (s *clientSuite) TestFetchCapturesErrorBody() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"slow down","errors":[{"reason":"rateLimitExceeded"}]}}`)
	}
	c := s.newClient()

	resp, err := c.Fetch(context.Background(), &Request{Method: http.MethodGet, URL: s.server.URL + "/files"})
	s.Require().NoError(err)
	s.False(resp.OK())
	s.False(resp.ServerError())
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)
	s.Contains(string(resp.Body), "slow down")

	var gerr *googleapi.Error
	s.Require().ErrorAs(resp.Err(), &gerr)
	s.Equal(http.StatusTooManyRequests, gerr.Code)
	s.Equal("slow down", gerr.Message)
	s.Require().Len(gerr.Errors, 1)
	s.Equal("rateLimitExceeded", gerr.Errors[0].Reason)
}

func (s *clientSuite) TestFetchSuccess() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":"f1"}`)
	}
	c := s.newClient()

	resp, err := c.Fetch(context.Background(), &Request{Method: http.MethodGet, URL: s.server.URL + "/files/f1"})
	s.Require().NoError(err)
	s.True(resp.OK())
	s.NoError(resp.Err())

	var out struct {
		ID string `json:"id"`
	}
	s.Require().NoError(resp.DecodeJSON(&out))
	s.Equal("f1", out.ID)
}

func (s *clientSuite) TestFetchTransportFailure() {
	c := s.newClient()
	s.server.Close()

	_, err := c.Fetch(context.Background(), &Request{Method: http.MethodGet, URL: s.server.URL + "/files"})
	s.Error(err)
}

func (s *clientSuite) TestDecodeJSONEmptyBody() {
	r := &Response{StatusCode: http.StatusOK}
	s.Error(r.DecodeJSON(&struct{}{}))
}

func (s *clientSuite) TestReadAllAndClose() {
	rc := &closeTracker{Reader: bytes.NewReader([]byte("payload"))}
	data, err := ReadAllAndClose(rc)
	s.Require().NoError(err)
	s.Equal("payload", string(data))
	s.True(rc.closed)

	data, err = ReadAllAndClose(nil)
	s.NoError(err)
	s.Nil(data)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}
