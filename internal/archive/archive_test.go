// internal/archive/archive_test.go
package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "reports/abc/report.pdf", Key("/reports/", "abc", "report.pdf"))
	assert.Equal(t, "abc/report.pdf", Key("", "abc", "../../report.pdf"))
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := NewLocal(dir, zap.NewNop())

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, a.Put(ctx, "2024/03/id/report.pdf", "application/pdf", []byte("%PDF-1.3")))

		got, err := a.Get(ctx, "2024/03/id/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.3", string(got))

		entries, err := os.ReadDir(filepath.Join(dir, "2024", "03", "id"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temp files left behind")
	})

	t.Run("missing report", func(t *testing.T) {
		_, err := a.Get(ctx, "nope.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		assert.Error(t, a.Put(ctx, "../escape.pdf", "application/pdf", []byte("x")))
		_, err := a.Get(ctx, "/etc/passwd")
		assert.Error(t, err)
	})
}

// fakeS3 serves path-style PUT and GET for one bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, Config{
		Backend:   "s3",
		Bucket:    "reports",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
		PathStyle: true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "s3", a.Name())

	require.NoError(t, a.Put(ctx, "2024/03/id/report.pdf", "application/pdf", []byte("%PDF-1.3")))
	assert.Equal(t, "application/pdf", fake.types["/reports/2024/03/id/report.pdf"])

	got, err := a.Get(ctx, "2024/03/id/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(got))

	_, err = a.Get(ctx, "2024/03/other/report.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = New(ctx, Config{Backend: "local", Path: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", a.Name())

	_, err = New(ctx, Config{Backend: "local"}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: "s3"}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: "ftp"}, nil)
	assert.Error(t, err)
}
