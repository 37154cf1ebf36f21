// Package viewstate keeps a caller-side view of the files in a container in step with the outcome of gateway calls.
//
// A Collection applies the record returned by a successful call directly. When a call fails in a way that leaves the
// remote outcome unknown (see drivefm.IsAmbiguous) it re-lists the container instead of guessing.
package viewstate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/options"
	"github.com/c2fo/drivefm/options/scope"
)

var errGatewayRequired = errors.New("non-nil drivefm.Gateway is required")

// Collection is the set of records of one container, keyed by ID. It is safe for concurrent use.
type Collection struct {
	gw        drivefm.Gateway
	container string
	logger    *slog.Logger

	mu      sync.RWMutex
	records map[string]drivefm.FileRecord
}

// Option configures a Collection.
type Option func(*Collection)

// WithContainer scopes the collection, its listings and its uploads to a container id.
func WithContainer(id string) Option {
	return func(c *Collection) {
		c.container = id
	}
}

// WithLogger sets the logger failed refreshes are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns an empty Collection backed by gw. Call Refresh to load it.
func New(gw drivefm.Gateway, opts ...Option) (*Collection, error) {
	if gw == nil {
		return nil, errGatewayRequired
	}
	c := &Collection{
		gw:      gw,
		logger:  slog.New(slog.DiscardHandler),
		records: map[string]drivefm.FileRecord{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "viewstate"))
	return c, nil
}

func (c *Collection) scope() []options.CallOption {
	if c.container == "" {
		return nil
	}
	return []options.CallOption{scope.WithContainer(c.container)}
}

// Refresh replaces the collection with a fresh listing. On failure the collection is left as it was.
func (c *Collection) Refresh(ctx context.Context) error {
	listed, err := c.gw.List(ctx, c.scope()...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[string]drivefm.FileRecord, len(listed))
	for _, rec := range listed {
		if prev, ok := c.records[rec.ID]; ok && prev.NewerThan(rec) {
			rec = prev
		}
		next[rec.ID] = rec
	}
	c.records = next
	return nil
}

// Upload stores a new file through the gateway and adds its record.
func (c *Collection) Upload(ctx context.Context, name, contentType string, payload io.Reader,
	opts ...options.CallOption) (drivefm.FileRecord, error) {
	rec, err := c.gw.Upload(ctx, name, contentType, payload, append(c.scope(), opts...)...)
	if err != nil {
		c.reconcile(ctx, "upload", err)
		return drivefm.FileRecord{}, err
	}
	c.upsert(rec)
	return rec, nil
}

// Rename renames file id through the gateway and replaces its record.
func (c *Collection) Rename(ctx context.Context, id, newName string) (drivefm.FileRecord, error) {
	rec, err := c.gw.Rename(ctx, id, newName)
	if err != nil {
		c.reconcile(ctx, "rename", err)
		return drivefm.FileRecord{}, err
	}
	c.upsert(rec)
	return rec, nil
}

// Delete removes file id through the gateway and drops its record. A file the remote store no longer knows is dropped
// as well, although the error is still returned.
func (c *Collection) Delete(ctx context.Context, id string) error {
	err := c.gw.Delete(ctx, id)
	if err == nil || drivefm.StatusCode(err) == http.StatusNotFound {
		c.remove(id)
	}
	if err != nil {
		c.reconcile(ctx, "delete", err)
	}
	return err
}

// reconcile re-lists after a failure that may or may not have been applied remotely.
func (c *Collection) reconcile(ctx context.Context, op string, cause error) {
	if !drivefm.IsAmbiguous(cause) {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("refresh after ambiguous failure failed",
			slog.String("op", op),
			slog.Any("cause", cause),
			slog.Any("error", err),
		)
	}
}

// upsert stores rec unless the collection already holds a newer record for the same id.
func (c *Collection) upsert(rec drivefm.FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.records[rec.ID]; ok && prev.NewerThan(rec) {
		return
	}
	c.records[rec.ID] = rec
}

func (c *Collection) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
}

// Get returns the record of file id.
func (c *Collection) Get(id string) (drivefm.FileRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	return rec, ok
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Records returns a snapshot ordered like a listing: most recently modified first, then by name.
func (c *Collection) Records() []drivefm.FileRecord {
	c.mu.RLock()
	out := make([]drivefm.FileRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ModifiedAt.Equal(b.ModifiedAt) {
			return a.ModifiedAt.After(b.ModifiedAt)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}
