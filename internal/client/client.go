// Package client is the call surface a host environment uses to browse and
// edit one bucket: construct a Client from credentials, then list, read,
// write, delete, stat, rename and create directories.
//
// Every failure is reported as a single *Error carrying a human-readable
// message. The storage error that caused it stays reachable through
// errors.As for callers that want to tell not-found from the rest.
package client

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/koustreak/s3studio/internal/filestore"
	"github.com/koustreak/s3studio/internal/filestore/minio"
	"github.com/koustreak/s3studio/internal/logger"
)

// Credentials identify the bucket and how to reach it.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Bucket          string
	// Endpoint is optional; empty means AWS S3.
	Endpoint string
	UseSSL   bool
}

// Config converts c to a gateway config.
func (c Credentials) Config() *filestore.Config {
	cfg := &filestore.Config{
		Provider:     filestore.ProviderS3,
		Endpoint:     c.Endpoint,
		AccessKey:    c.AccessKeyID,
		SecretKey:    c.SecretAccessKey,
		SessionToken: c.SessionToken,
		Region:       c.Region,
		Bucket:       c.Bucket,
		UseSSL:       c.UseSSL,
	}
	cfg.Normalize()
	return cfg
}

// CredentialsFrom is the inverse of Credentials.Config.
func CredentialsFrom(cfg filestore.Config) Credentials {
	return Credentials{
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		SessionToken:    cfg.SessionToken,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		UseSSL:          cfg.UseSSL,
	}
}

// Error is the only error type returned by Client.
type Error struct {
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func fail(action string, err error) *Error {
	return &Error{Message: fmt.Sprintf("Failed to %s: %v", action, err), cause: err}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call events.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client is a handle on one bucket. It is safe for concurrent use.
type Client struct {
	gw     filestore.Gateway
	bucket string
	log    *logger.Logger
}

// New connects to the S3-compatible bucket described by creds.
func New(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	gw, err := minio.New(ctx, creds.Config())
	if err != nil {
		return nil, fail("create operator", err)
	}
	c := NewWithGateway(gw, creds.Bucket, opts...)
	c.log.Info("client initialized")
	return c, nil
}

// NewWithGateway wraps an existing gateway, for any backend.
func NewWithGateway(gw filestore.Gateway, bucket string, opts ...Option) *Client {
	c := &Client{gw: gw, bucket: bucket, log: logger.Global()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("bucket", bucket).Logger()
	return c
}

// Bucket returns the bucket name the client is bound to.
func (c *Client) Bucket() string { return c.bucket }

// Close releases the underlying gateway.
func (c *Client) Close() error {
	return c.gw.Close()
}

// List returns the direct children of the directory at path.
func (c *Client) List(ctx context.Context, path string) ([]filestore.Entry, error) {
	log := c.log.Op("list", path)
	log.Debug("listing path")

	raw, err := c.gw.List(ctx, path)
	if err != nil {
		log.ErrorWith("list failed", err, nil)
		return nil, fail("collect entries", err)
	}

	entries := filestore.FilterDirectChildren(path, raw)
	log.With().Int("raw", len(raw)).Int("entries", len(entries)).Logger().Debug("listed path")
	return entries, nil
}

// Read returns the content of the file at path.
func (c *Client) Read(ctx context.Context, path string) ([]byte, error) {
	log := c.log.Op("read", path)
	log.Debug("reading file")

	data, err := c.gw.Read(ctx, path)
	if err != nil {
		log.ErrorWith("read failed", err, nil)
		return nil, fail("read", err)
	}

	log.Debugf("read %s", humanize.Bytes(uint64(len(data))))
	return data, nil
}

// Write stores data at path.
func (c *Client) Write(ctx context.Context, path string, data []byte) error {
	log := c.log.Op("write", path)
	log.Debugf("writing %s", humanize.Bytes(uint64(len(data))))

	if err := c.gw.Write(ctx, path, data); err != nil {
		log.ErrorWith("write failed", err, nil)
		return fail("write", err)
	}

	log.Info("write successful")
	return nil
}

// Delete removes the object at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	log := c.log.Op("delete", path)
	log.Debug("deleting")

	if err := c.gw.Delete(ctx, path); err != nil {
		log.ErrorWith("delete failed", err, nil)
		return fail("delete", err)
	}

	log.Info("delete successful")
	return nil
}

// Stat returns metadata for path. The entry's Path is path as given and
// its Name is the last segment.
func (c *Client) Stat(ctx context.Context, path string) (filestore.Entry, error) {
	log := c.log.Op("stat", path)
	log.Debug("getting metadata")

	raw, err := c.gw.Stat(ctx, path)
	if err != nil {
		log.ErrorWith("stat failed", err, nil)
		return filestore.Entry{}, fail("stat", err)
	}
	return filestore.EntryFromRaw(path, raw), nil
}

// Rename moves from to to.
func (c *Client) Rename(ctx context.Context, from, to string) error {
	log := c.log.Op("rename", from).With().Str("to", to).Logger()
	log.Debug("renaming")

	if err := c.gw.Rename(ctx, from, to); err != nil {
		log.ErrorWith("rename failed", err, nil)
		return fail("rename", err)
	}

	log.Info("rename successful")
	return nil
}

// CreateDir creates the directory at path.
func (c *Client) CreateDir(ctx context.Context, path string) error {
	log := c.log.Op("create_dir", path)
	log.Debug("creating directory")

	if err := c.gw.CreateDir(ctx, path); err != nil {
		log.ErrorWith("create directory failed", err, nil)
		return fail("create directory", err)
	}

	log.Info("directory created")
	return nil
}
