// Package minio provides an S3-compatible implementation of
// filestore.Gateway on top of minio-go.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("AKIA...", "secret", "us-east-1", "media")
//	gw, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer gw.Close()
//
//	raw, err := gw.List(ctx, "/photos")
package minio

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"github.com/koustreak/s3studio/internal/filetype"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const dirContentType = "application/x-directory"

// objectAPI is the subset of the minio-go client the driver calls.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ListObjects(ctx context.Context, bucket string, opts miniogo.ListObjectsOptions) <-chan miniogo.ObjectInfo
	GetObject(ctx context.Context, bucket, key string, opts miniogo.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts miniogo.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, key string, opts miniogo.StatObjectOptions) (miniogo.ObjectInfo, error)
	CopyObject(ctx context.Context, dst miniogo.CopyDestOptions, src miniogo.CopySrcOptions) (miniogo.UploadInfo, error)
}

// sdkClient adapts *miniogo.Client to objectAPI.
type sdkClient struct {
	*miniogo.Client
}

func (c sdkClient) GetObject(ctx context.Context, bucket, key string, opts miniogo.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Driver is a minio-go implementation of filestore.Gateway bound to one
// bucket. It is safe for concurrent use by multiple goroutines.
type Driver struct {
	api    objectAPI
	bucket string
}

var _ filestore.Gateway = (*Driver)(nil)

// New builds a client from cfg and returns a Driver. It calls Ping to
// validate credentials and bucket before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	host, secure := cfg.HostAndTLS()
	client, err := miniogo.New(host, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create s3 client", err)
	}

	d := newDriver(sdkClient{client}, cfg.Bucket)
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func newDriver(api objectAPI, bucket string) *Driver {
	return &Driver{api: api, bucket: bucket}
}

// --- filestore.Gateway implementation ---

// Ping verifies the bucket exists and the credentials can see it.
func (d *Driver) Ping(ctx context.Context) error {
	ok, err := d.api.BucketExists(ctx, d.bucket)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.New(errs.ErrKindNotFound, "bucket "+d.bucket+" does not exist")
	}
	return nil
}

// Close is a no-op: the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// List returns the objects and common prefixes one level below path.
// A marker object for path itself may be included.
func (d *Driver) List(ctx context.Context, path string) ([]filestore.RawEntry, error) {
	opts := miniogo.ListObjectsOptions{Prefix: dirKey(path)}

	var results []filestore.RawEntry
	for obj := range d.api.ListObjects(ctx, d.bucket, opts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list objects")
		}
		results = append(results, toRaw(obj))
	}
	return results, nil
}

// Read downloads the whole object at path.
func (d *Driver) Read(ctx context.Context, path string) ([]byte, error) {
	obj, err := d.api.GetObject(ctx, d.bucket, objectKey(path), miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(err, "failed to read object")
	}
	return data, nil
}

// Write uploads data to path with a Content-Type derived from its name.
func (d *Driver) Write(ctx context.Context, path string, data []byte) error {
	key := objectKey(path)
	if key == "" {
		return errs.New(errs.ErrKindInvalidInput, "cannot write to bucket root")
	}

	contentType := filetype.Detect(key).MIMEType
	if filestore.IsDirPath(key) {
		contentType = dirContentType
	}
	_, err := d.api.PutObject(ctx, d.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// Delete removes the object at path. For a directory only the marker
// object is removed.
func (d *Driver) Delete(ctx context.Context, path string) error {
	key := objectKey(path)
	if key == "" {
		return errs.New(errs.ErrKindInvalidInput, "cannot delete bucket root")
	}
	if err := d.api.RemoveObject(ctx, d.bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to remove object")
	}
	return nil
}

// Stat returns metadata for path. A directory without a marker object
// exists as long as at least one object lives under it.
func (d *Driver) Stat(ctx context.Context, path string) (*filestore.RawEntry, error) {
	key := objectKey(path)
	if key == "" {
		if err := d.Ping(ctx); err != nil {
			return nil, err
		}
		return &filestore.RawEntry{Path: "/", IsDir: true}, nil
	}

	info, err := d.api.StatObject(ctx, d.bucket, key, miniogo.StatObjectOptions{})
	if err == nil {
		raw := toRaw(info)
		return &raw, nil
	}
	mapped := mapError(err, "failed to stat object")
	if !filestore.IsDirPath(key) || mapped.Kind != errs.ErrKindNotFound {
		return nil, mapped
	}

	found, err := d.hasChildren(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, mapped
	}
	return &filestore.RawEntry{Path: key, IsDir: true}, nil
}

// Rename copies from to to server-side and removes the source. When from
// is a directory every object below it is moved, marker included.
func (d *Driver) Rename(ctx context.Context, from, to string) error {
	src, dst := objectKey(from), objectKey(to)
	if src == "" || dst == "" {
		return errs.New(errs.ErrKindInvalidInput, "cannot rename bucket root")
	}
	if !filestore.IsDirPath(src) {
		return d.move(ctx, src, dst)
	}

	dst = dirKey(dst)
	if strings.HasPrefix(dst, src) {
		return errs.New(errs.ErrKindInvalidInput, "cannot move a directory into itself")
	}

	// Collect first so the listing is not disturbed by the moves.
	var keys []string
	opts := miniogo.ListObjectsOptions{Prefix: src, Recursive: true}
	for obj := range d.api.ListObjects(ctx, d.bucket, opts) {
		if obj.Err != nil {
			return mapError(obj.Err, "failed to list objects")
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return errs.New(errs.ErrKindNotFound, "directory "+src+" does not exist")
	}

	for _, key := range keys {
		if err := d.move(ctx, key, dst+strings.TrimPrefix(key, src)); err != nil {
			return err
		}
	}
	return nil
}

// CreateDir writes an empty marker object whose key ends in "/".
func (d *Driver) CreateDir(ctx context.Context, path string) error {
	key := dirKey(path)
	if key == "" {
		return nil
	}
	_, err := d.api.PutObject(ctx, d.bucket, key, bytes.NewReader(nil), 0,
		miniogo.PutObjectOptions{ContentType: dirContentType})
	if err != nil {
		return mapError(err, "failed to create directory marker")
	}
	return nil
}

// --- helpers ---

func (d *Driver) move(ctx context.Context, src, dst string) error {
	_, err := d.api.CopyObject(ctx,
		miniogo.CopyDestOptions{Bucket: d.bucket, Object: dst},
		miniogo.CopySrcOptions{Bucket: d.bucket, Object: src},
	)
	if err != nil {
		return mapError(err, "failed to copy object")
	}
	if err := d.api.RemoveObject(ctx, d.bucket, src, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to remove source object")
	}
	return nil
}

func (d *Driver) hasChildren(ctx context.Context, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := miniogo.ListObjectsOptions{Prefix: prefix, MaxKeys: 1}
	for obj := range d.api.ListObjects(ctx, d.bucket, opts) {
		if obj.Err != nil {
			return false, mapError(obj.Err, "failed to list objects")
		}
		return true, nil
	}
	return false, nil
}

// objectKey maps a gateway path to an object key: keys never start with "/".
func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

// dirKey maps a directory path to its listing prefix ("" for the root).
func dirKey(path string) string {
	key := objectKey(path)
	if key != "" && !filestore.IsDirPath(key) {
		key += "/"
	}
	return key
}

func toRaw(obj miniogo.ObjectInfo) filestore.RawEntry {
	raw := filestore.RawEntry{
		Path:  obj.Key,
		IsDir: filestore.IsDirPath(obj.Key),
	}
	if obj.Size > 0 && !raw.IsDir {
		raw.Size = uint64(obj.Size)
	}
	if !obj.LastModified.IsZero() {
		mod := obj.LastModified
		raw.LastModified = &mod
	}
	return raw
}
