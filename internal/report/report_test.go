package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	re := renderFixture(t, Options{})

	assert.Len(t, re.Document.Servers, 2)
	assert.Len(t, re.Views.Rows, 8)
	assert.Equal(t, 8, re.Summary.TotalTests)
	assert.Equal(t, "caltechrnaget.html", re.ServerPage(0))
	assert.Equal(t, "", re.ServerPage(5))
	assert.Equal(t, "2 servers, 8 tests", re.String())
	require.NotNil(t, re.Summary.Runtime)
	assert.Contains(t, re.Summary.Runtime.Timers, "report-load")
	assert.Contains(t, re.Summary.Runtime.Timers, "report-views")
}

func TestRenderErrors(t *testing.T) {
	tmp := t.TempDir()
	empty := filepath.Join(tmp, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0644))
	mismatch := filepath.Join(tmp, "mismatch.json")
	require.NoError(t, os.WriteFile(mismatch, []byte(`[
		{"server_name":"a","test_results":{"projects":{"p":[{"name":"t","result":1}]}}},
		{"server_name":"b","test_results":{"projects":{"p":[]}}}
	]`), 0644))

	tests := []struct {
		name    string
		source  string
		opts    Options
		wantErr error
	}{
		{name: "missing source", source: filepath.Join(tmp, "missing.json"), wantErr: ErrFetch},
		{name: "no data", source: empty, wantErr: ErrNoData},
		{name: "strict mismatch", source: mismatch, opts: Options{Strict: true}, wantErr: ErrTestCountMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRenderer(tc.opts).Render(context.Background(), tc.source)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	re, err := NewRenderer(Options{}).Render(context.Background(), mismatch)
	require.NoError(t, err, "count mismatch is only a warning")
	assert.Len(t, re.Views.Rows, 1)
}
