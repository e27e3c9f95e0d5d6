// Package testutil contains an in-memory filestore.Gateway used by tests of
// the client and HTTP layers. It is not intended for production usage.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
)

// Gateway keeps objects in a map keyed without a leading "/". Its List
// is recursive and includes the directory's own marker, so callers must
// filter the result.
type Gateway struct {
	mu      sync.Mutex
	objects map[string][]byte
	failing map[string]error
	closed  bool

	// Now stamps written objects.
	Now func() time.Time
}

// NewGateway returns a gateway pre-populated with empty objects at keys.
func NewGateway(keys ...string) *Gateway {
	g := &Gateway{
		objects: map[string][]byte{},
		failing: map[string]error{},
		Now:     func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	for _, k := range keys {
		g.objects[strings.TrimPrefix(k, "/")] = nil
	}
	return g
}

// Put stores data at key (chainable).
func (g *Gateway) Put(key string, data []byte) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[strings.TrimPrefix(key, "/")] = data
	return g
}

// Fail makes every call of op ("list", "read", ...) return err (chainable).
func (g *Gateway) Fail(op string, err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[op] = err
	return g
}

// Keys returns the stored keys, sorted.
func (g *Gateway) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.objects))
	for k := range g.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Closed reports whether Close was called.
func (g *Gateway) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func (g *Gateway) injected(op string) error {
	return g.failing[op]
}

func (g *Gateway) raw(key string) filestore.RawEntry {
	mod := g.Now()
	r := filestore.RawEntry{Path: key, IsDir: filestore.IsDirPath(key), LastModified: &mod}
	if !r.IsDir {
		r.Size = uint64(len(g.objects[key]))
	}
	return r
}

func (g *Gateway) List(_ context.Context, path string) ([]filestore.RawEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("list"); err != nil {
		return nil, err
	}

	prefix := strings.TrimPrefix(path, "/")
	if prefix != "" && !filestore.IsDirPath(prefix) {
		prefix += "/"
	}

	var out []filestore.RawEntry
	for _, k := range sortedKeys(g.objects) {
		if strings.HasPrefix(k, prefix) {
			out = append(out, g.raw(k))
		}
	}
	return out, nil
}

func (g *Gateway) Read(_ context.Context, path string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("read"); err != nil {
		return nil, err
	}
	data, ok := g.objects[strings.TrimPrefix(path, "/")]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key "+path)
	}
	return append([]byte(nil), data...), nil
}

func (g *Gateway) Write(_ context.Context, path string, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("write"); err != nil {
		return err
	}
	g.objects[strings.TrimPrefix(path, "/")] = append([]byte(nil), data...)
	return nil
}

func (g *Gateway) Delete(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("delete"); err != nil {
		return err
	}
	delete(g.objects, strings.TrimPrefix(path, "/"))
	return nil
}

func (g *Gateway) Stat(_ context.Context, path string) (*filestore.RawEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("stat"); err != nil {
		return nil, err
	}
	key := strings.TrimPrefix(path, "/")
	if _, ok := g.objects[key]; !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key "+path)
	}
	r := g.raw(key)
	return &r, nil
}

func (g *Gateway) Rename(_ context.Context, from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("rename"); err != nil {
		return err
	}
	src, dst := strings.TrimPrefix(from, "/"), strings.TrimPrefix(to, "/")
	data, ok := g.objects[src]
	if !ok {
		return errs.New(errs.ErrKindNotFound, "no such key "+from)
	}
	delete(g.objects, src)
	g.objects[dst] = data
	return nil
}

func (g *Gateway) CreateDir(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected("create_dir"); err != nil {
		return err
	}
	key := strings.TrimPrefix(path, "/")
	if !filestore.IsDirPath(key) {
		key += "/"
	}
	g.objects[key] = nil
	return nil
}

func (g *Gateway) Ping(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.injected("ping")
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ filestore.Gateway = (*Gateway)(nil)
