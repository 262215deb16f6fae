package sample

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
	"go.uber.org/goleak"

	"ccerddap/internal/datasource/httpds"
	"ccerddap/internal/erddap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func sampleServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte("CDF\x01payload"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`Error { code=500; message="Query error: no matching results"; }`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(workDir string) *Fetcher {
	return NewFetcher(httpds.NewClient(httpds.Config{Timeout: 5 * time.Second}), workDir)
}

func TestFetch_WritesFileAndCreatesDir(t *testing.T) {
	srv := sampleServer(t)
	work := filepath.Join(t.TempDir(), "nested", "work")
	f := newTestFetcher(work)

	got, err := f.Fetch(context.Background(), &Sample{DatasetID: "buoyA", URL: srv.URL + "/ok"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(work, "buoyA.nc"), got.Path)
	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, "CDF\x01payload", string(data))
	assert.Equal(t, int64(len(data)), got.Size)
	assert.Equal(t, xxh3.Hash(data), got.Checksum)
	assert.Len(t, got.ChecksumHex(), 16)
}

func TestFetch_Overwrites(t *testing.T) {
	srv := sampleServer(t)
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "buoyA.nc"), []byte("old contents that are longer"), 0o644))

	got, err := newTestFetcher(work).Fetch(context.Background(), &Sample{DatasetID: "buoyA", URL: srv.URL + "/ok"})
	require.NoError(t, err)

	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, "CDF\x01payload", string(data))
}

func TestFetch_NonSuccessWritesNothing(t *testing.T) {
	srv := sampleServer(t)
	work := filepath.Join(t.TempDir(), "work")

	_, err := newTestFetcher(work).Fetch(context.Background(), &Sample{DatasetID: "buoyA", URL: srv.URL + "/bad"})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Contains(t, fe.Body, "no matching results")
	assert.Equal(t, "buoyA", fe.DatasetID)

	_, statErr := os.Stat(work)
	assert.True(t, os.IsNotExist(statErr), "work dir must not be created on failure")
}

func TestFetch_NetworkError(t *testing.T) {
	srv := sampleServer(t)
	url := srv.URL + "/ok"
	srv.Close()

	_, err := newTestFetcher(t.TempDir()).Fetch(context.Background(), &Sample{DatasetID: "x", URL: url})
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.StatusCode)
	assert.NotNil(t, fe.Err)
}

// An id that would name a file outside the work dir is refused before any
// request is made.
func TestFetch_RejectsEscapingID(t *testing.T) {
	srv := sampleServer(t)
	root := t.TempDir()
	work := filepath.Join(root, "work")
	f := newTestFetcher(work)

	for _, id := range []string{"../escaped", "a/b", `..\escaped`, ".."} {
		_, err := f.Fetch(context.Background(), &Sample{DatasetID: id, URL: srv.URL + "/ok"})
		var inv *erddap.InvalidDatasetIDError
		require.ErrorAs(t, err, &inv, id)

		_, err = f.Path(id)
		assert.Error(t, err, id)
	}

	assert.NoFileExists(t, filepath.Join(root, "escaped.nc"))
	_, statErr := os.Stat(work)
	assert.True(t, os.IsNotExist(statErr), "work dir must not be created for a rejected id")
}
