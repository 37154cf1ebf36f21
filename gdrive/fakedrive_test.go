package gdrive

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

const testToken = "ya29.test-token"

// recordedRequest is a request as the fake Drive server saw it.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeDrive is an httptest server answering Drive v3 routes registered per test.
type fakeDrive struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeDrive() *fakeDrive {
	d := &fakeDrive{routes: map[string]http.HandlerFunc{}}
	d.server = httptest.NewServer(http.HandlerFunc(d.serve))
	return d
}

func (d *fakeDrive) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	d.mu.Lock()
	d.requests = append(d.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := d.routes[r.Method+" "+r.URL.Path]
	d.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorBody(http.StatusNotImplemented, "no route", ""))
		return
	}
	h(w, r)
}

func (d *fakeDrive) handle(method, path string, h http.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[method+" "+path] = h
}

func (d *fakeDrive) close() {
	d.server.Close()
}

func (d *fakeDrive) url(path string) string {
	return d.server.URL + path
}

func (d *fakeDrive) recorded() []recordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]recordedRequest(nil), d.requests...)
}

// count returns how many requests matched method and path.
func (d *fakeDrive) count(method, path string) int {
	n := 0
	for _, r := range d.recorded() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (d *fakeDrive) last(method, path string) recordedRequest {
	reqs := d.recorded()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i]
		}
	}
	return recordedRequest{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, v)
	}
}

func errorBody(code int, message, reason string) map[string]any {
	e := map[string]any{"code": code, "message": message}
	if reason != "" {
		e["errors"] = []map[string]any{{"reason": reason, "message": message, "domain": "usageLimits"}}
	}
	return map[string]any{"error": e}
}

func driveFile(id, name, mimeType, size, modified string) map[string]any {
	f := map[string]any{"id": id, "name": name, "mimeType": mimeType, "modifiedTime": modified}
	if size != "" {
		f["size"] = size
	}
	return f
}
