package report

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeXZ(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestLoad(t *testing.T) {
	raw, err := os.ReadFile("testdata/results.json")
	require.NoError(t, err)

	tmp := t.TempDir()
	xzPath := filepath.Join(tmp, "results.json.xz")
	writeXZ(t, xzPath, raw)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/results.json":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write(raw)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	tests := []struct {
		name   string
		source string
		stdin  string
	}{
		{name: "file", source: "testdata/results.json"},
		{name: "xz file", source: xzPath},
		{name: "url", source: ts.URL + "/results.json"},
		{name: "stdin", source: SourceStdin, stdin: string(raw)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := &Loader{RetryMax: 0, Stdin: strings.NewReader(tc.stdin)}
			doc, err := l.Load(context.Background(), tc.source)
			require.NoError(t, err)
			require.Len(t, doc.Servers, 2)
			assert.Equal(t, "Caltech RNAget", doc.Servers[0].ServerName)
			assert.Equal(t, raw, doc.Raw)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	tmp := t.TempDir()
	badXZ := filepath.Join(tmp, "results.json.xz")
	require.NoError(t, os.WriteFile(badXZ, []byte("not xz"), 0644))
	badJSON := filepath.Join(tmp, "results.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{"), 0644))

	tests := []struct {
		name    string
		loader  *Loader
		source  string
		wantErr error
	}{
		{name: "missing file", loader: &Loader{}, source: filepath.Join(tmp, "missing.json"), wantErr: ErrFetch},
		{name: "not found url", loader: &Loader{}, source: ts.URL + "/missing.json", wantErr: ErrFetch},
		{name: "no stdin", loader: &Loader{}, source: SourceStdin, wantErr: ErrFetch},
		{name: "bad xz", loader: &Loader{}, source: badXZ, wantErr: ErrMalformedReport},
		{name: "bad json", loader: &Loader{}, source: badJSON, wantErr: ErrMalformedReport},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.loader.Load(context.Background(), tc.source)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadRetries(t *testing.T) {
	raw, err := os.ReadFile("testdata/results.json")
	require.NoError(t, err)

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(raw)
	}))
	defer ts.Close()

	doc, err := (&Loader{RetryMax: 2}).Load(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Len(t, doc.Servers, 2)
	assert.Equal(t, 2, calls)
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	assert.Equal(t, 5, l.RetryMax)
	assert.Equal(t, os.Stdin, l.Stdin)
}
