// Package filestore defines the storage gateway contract and the listing
// logic layered on top of it.
//
// Backends (currently S3-compatible via minio-go) implement Gateway.
// Callers depend only on this package, never on a specific driver package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("AKIA...", "secret", "us-east-1", "media")
//	gw, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer gw.Close()
//
//	raw, err := gw.List(ctx, "/photos")
//	entries := filestore.FilterDirectChildren("/photos", raw)
package filestore

import "context"

// Gateway is the object-storage capability the client is built on.
// Every operation may block on the network and returns an *errs.Error
// on failure (not found, permission denied, connection failed, timeout,
// backend error). Paths use "/" as separator; a trailing "/" marks a
// directory.
type Gateway interface {
	// List returns the entries under path. Ordering is unspecified and the
	// result may include the directory's own entry or deeper descendants.
	List(ctx context.Context, path string) ([]RawEntry, error)

	// Read returns the full content of the object at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, replacing any existing object.
	Write(ctx context.Context, path string, data []byte) error

	// Delete removes the object at path. Deleting a missing object succeeds.
	Delete(ctx context.Context, path string) error

	// Stat returns metadata for path without reading its content.
	Stat(ctx context.Context, path string) (*RawEntry, error)

	// Rename moves from to to. A directory path moves everything under it.
	Rename(ctx context.Context, from, to string) error

	// CreateDir creates the directory marker for path.
	CreateDir(ctx context.Context, path string) error

	// Ping verifies the bucket is reachable with the configured credentials.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
