package client

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"github.com/koustreak/s3studio/internal/logger"
	"github.com/koustreak/s3studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(gw filestore.Gateway) *Client {
	return NewWithGateway(gw, "media", WithLogger(logger.Nop()))
}

func TestClient_ListReturnsDirectChildren(t *testing.T) {
	gw := testutil.NewGateway("dir/", "dir/x.txt", "dir/sub/", "dir/sub/y.txt", "top.txt")
	c := newTestClient(gw)

	entries, err := c.List(context.Background(), "/dir")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "sub", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, "dir/sub/", entries[0].Path)
	assert.Equal(t, "x.txt", entries[1].Name)
	assert.False(t, entries[1].IsDir)
}

func TestClient_ListRoot(t *testing.T) {
	c := newTestClient(testutil.NewGateway("a", "b/", "b/c"))

	entries, err := c.List(context.Background(), "/")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
	assert.True(t, entries[1].IsDir)
}

func TestClient_ReadWrite(t *testing.T) {
	gw := testutil.NewGateway()
	c := newTestClient(gw)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, "/docs/a.txt", []byte("hello")))
	data, err := c.Read(ctx, "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestClient_Stat(t *testing.T) {
	gw := testutil.NewGateway().Put("a/b/c.txt", []byte("12345"))
	c := newTestClient(gw)

	e, err := c.Stat(context.Background(), "/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c.txt", e.Path)
	assert.Equal(t, "c.txt", e.Name)
	assert.Equal(t, uint64(5), e.Size)
	assert.NotNil(t, e.LastModified)
}

func TestClient_RenameDeleteCreateDir(t *testing.T) {
	gw := testutil.NewGateway("a.txt")
	c := newTestClient(gw)
	ctx := context.Background()

	require.NoError(t, c.Rename(ctx, "/a.txt", "/b.txt"))
	require.NoError(t, c.CreateDir(ctx, "/photos"))
	assert.Equal(t, []string{"b.txt", "photos/"}, gw.Keys())

	require.NoError(t, c.Delete(ctx, "/b.txt"))
	assert.Equal(t, []string{"photos/"}, gw.Keys())
}

func TestClient_ErrorMessages(t *testing.T) {
	cause := errs.New(errs.ErrKindPermissionDenied, "access denied")
	ctx := context.Background()

	tests := []struct {
		op   string
		call func(*Client) error
		want string
	}{
		{"list", func(c *Client) error { _, err := c.List(ctx, "/"); return err }, "Failed to collect entries: "},
		{"read", func(c *Client) error { _, err := c.Read(ctx, "/a"); return err }, "Failed to read: "},
		{"write", func(c *Client) error { return c.Write(ctx, "/a", nil) }, "Failed to write: "},
		{"delete", func(c *Client) error { return c.Delete(ctx, "/a") }, "Failed to delete: "},
		{"stat", func(c *Client) error { _, err := c.Stat(ctx, "/a"); return err }, "Failed to stat: "},
		{"rename", func(c *Client) error { return c.Rename(ctx, "/a", "/b") }, "Failed to rename: "},
		{"create_dir", func(c *Client) error { return c.CreateDir(ctx, "/d") }, "Failed to create directory: "},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			c := newTestClient(testutil.NewGateway().Fail(tt.op, cause))
			err := tt.call(c)

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.want+cause.Error(), cerr.Message)
			assert.True(t, errs.IsPermissionDenied(err))
		})
	}
}

func TestClient_LogsPerCall(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: buf})
	c := NewWithGateway(testutil.NewGateway(), "media", WithLogger(log))

	require.NoError(t, c.Write(context.Background(), "/x.bin", []byte{1, 2, 3}))

	out := buf.String()
	assert.Contains(t, out, `"op":"write"`)
	assert.Contains(t, out, `"path":"/x.bin"`)
	assert.Contains(t, out, `"bucket":"media"`)
	assert.Contains(t, out, "write successful")
}

func TestClient_Check(t *testing.T) {
	ok := newTestClient(testutil.NewGateway()).Check(context.Background())
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "Connection successful", ok.Message)
	assert.False(t, ok.TestedAt.IsZero())

	bad := newTestClient(testutil.NewGateway().Fail("list", errors.New("dial tcp: refused"))).Check(context.Background())
	assert.Equal(t, StatusError, bad.Status)
	assert.Contains(t, bad.Message, "dial tcp: refused")
}

func TestNew_InvalidCredentials(t *testing.T) {
	_, err := New(context.Background(), Credentials{Region: "us-east-1"})

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "Failed to create operator: ")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestTestConnection_InvalidCredentials(t *testing.T) {
	res := TestConnection(context.Background(), Credentials{})
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Failed to create operator")
}

func TestClient_Close(t *testing.T) {
	gw := testutil.NewGateway()
	require.NoError(t, newTestClient(gw).Close())
	assert.True(t, gw.Closed())
}

func TestCredentials_Config(t *testing.T) {
	creds := Credentials{AccessKeyID: " ak ", SecretAccessKey: "sk", Region: "us-east-1", Bucket: "media", Endpoint: "http://localhost:9000"}
	cfg := creds.Config()

	assert.Equal(t, "ak", cfg.AccessKey)
	assert.Equal(t, filestore.ProviderS3, cfg.Provider)
	assert.Equal(t, "http://localhost:9000", CredentialsFrom(*cfg).Endpoint)
}
