package hlsprobe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeValidManifest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXT-X-VERSION:3\n"))
	}))
	defer ts.Close()

	require.NoError(t, Probe(context.Background(), ts.URL))
}

func TestProbeMissingManifest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	assert.ErrorIs(t, Probe(context.Background(), ts.URL), ErrManifestNotFound)
}

func TestProbeRejectsNonHLSBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a manifest</html>"))
	}))
	defer ts.Close()

	assert.ErrorIs(t, Probe(context.Background(), ts.URL), ErrNotHLS)
}
