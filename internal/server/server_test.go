package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koustreak/s3studio/internal/client"
	"github.com/koustreak/s3studio/internal/errs"
	"github.com/koustreak/s3studio/internal/filestore"
	"github.com/koustreak/s3studio/internal/logger"
	"github.com/koustreak/s3studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(gw *testutil.Gateway) http.Handler {
	c := client.NewWithGateway(gw, "media", client.WithLogger(logger.Nop()))
	return New(c, logger.Nop(), 16).Routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestServer_ListEntries(t *testing.T) {
	h := newTestServer(testutil.NewGateway("dir/", "dir/x.txt", "dir/sub/", "dir/sub/y.txt"))

	rec := do(h, http.MethodGet, "/v1/entries?path=/dir", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "sub", entries[0]["name"])
	assert.Equal(t, true, entries[0]["is_dir"])
	assert.Equal(t, "dir/x.txt", entries[1]["path"])
	assert.Equal(t, "2024-01-01T00:00:00Z", entries[1]["last_modified"])
}

func TestServer_ListDefaultsToRoot(t *testing.T) {
	rec := do(newTestServer(testutil.NewGateway()), http.MethodGet, "/v1/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_ObjectLifecycle(t *testing.T) {
	gw := testutil.NewGateway()
	h := newTestServer(gw)

	rec := do(h, http.MethodPut, "/v1/object?path=/notes/a.md", "# hi")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/v1/object?path=/notes/a.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# hi", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))

	rec = do(h, http.MethodGet, "/v1/stat?path=/notes/a.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry filestore.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "a.md", entry.Name)
	assert.Equal(t, uint64(4), entry.Size)

	rec = do(h, http.MethodPost, "/v1/rename", `{"from": "/notes/a.md", "to": "/notes/b.md"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodPost, "/v1/dirs?path=/photos", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"notes/b.md", "photos/"}, gw.Keys())

	rec = do(h, http.MethodDelete, "/v1/object?path=/notes/b.md", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"photos/"}, gw.Keys())
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		gw     *testutil.Gateway
		method string
		target string
		body   string
		status int
		msg    string
	}{
		{"missing path", testutil.NewGateway(), http.MethodGet, "/v1/stat", "", http.StatusBadRequest, "path is required"},
		{"not found", testutil.NewGateway(), http.MethodGet, "/v1/object?path=/nope", "", http.StatusNotFound, "Failed to read: "},
		{"denied", testutil.NewGateway().Fail("list", errs.New(errs.ErrKindPermissionDenied, "AccessDenied")),
			http.MethodGet, "/v1/entries?path=/", "", http.StatusForbidden, "Failed to collect entries: "},
		{"transport", testutil.NewGateway().Fail("write", errs.Wrap(errs.ErrKindConnectionFailed, "put", errors.New("refused"))),
			http.MethodPut, "/v1/object?path=/a", "x", http.StatusBadGateway, "Failed to write: "},
		{"timeout", testutil.NewGateway().Fail("delete", errs.New(errs.ErrKindTimeout, "deadline")),
			http.MethodDelete, "/v1/object?path=/a", "", http.StatusGatewayTimeout, "Failed to delete: "},
		{"bad rename body", testutil.NewGateway(), http.MethodPost, "/v1/rename", "{", http.StatusBadRequest, "invalid rename request"},
		{"incomplete rename", testutil.NewGateway(), http.MethodPost, "/v1/rename", `{"from":"/a"}`, http.StatusBadRequest, "from and to are required"},
		{"too large", testutil.NewGateway(), http.MethodPut, "/v1/object?path=/a", strings.Repeat("x", 17), http.StatusRequestEntityTooLarge, "request body too large"},
		{"unknown kind", testutil.NewGateway().Fail("create_dir", errors.New("boom")),
			http.MethodPost, "/v1/dirs?path=/d", "", http.StatusInternalServerError, "Failed to create directory: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestServer(tt.gw), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, errorOf(t, rec), tt.msg)
		})
	}
}

func TestServer_Health(t *testing.T) {
	rec := do(newTestServer(testutil.NewGateway()), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"success"`)

	rec = do(newTestServer(testutil.NewGateway().Fail("list", errors.New("refused"))), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestServer_FileType(t *testing.T) {
	h := newTestServer(testutil.NewGateway())

	rec := do(h, http.MethodGet, "/v1/filetype?name=cat.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"previewType":"image","mimeType":"image/png"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/v1/filetype", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteJSON_SerializationFailure(t *testing.T) {
	s := New(nil, logger.Nop(), 0)
	rec := httptest.NewRecorder()

	s.writeJSON(rec, http.StatusOK, math.Inf(1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorOf(t, rec), "Serialization error")
}
