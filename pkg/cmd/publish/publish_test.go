package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReportDryRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("[]"), 0644))

	var out bytes.Buffer
	err := publishReport(context.Background(), &Input{
		dir:    dir,
		bucket: "reports",
		region: "us-east-1",
		prefix: "rnaget",
		dryRun: true,
	}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"s3://reports/rnaget/data.json", "s3://reports/rnaget/index.html"}, lines)
}

func TestPublishReportRequiresBucket(t *testing.T) {
	err := publishReport(context.Background(), &Input{dir: t.TempDir(), dryRun: true}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "bucket name is required")
}
