package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartsPage(t *testing.T) {
	doc := loadFixture(t)
	page := NewChartsPage(doc)
	assert.Equal(t, "RNAget Compliance Charts", page.PageTitle)
	assert.Len(t, page.Charts, 2)

	path := filepath.Join(t.TempDir(), ReportFileNameCharts)
	require.NoError(t, SaveChartsPage(page, path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Test outcomes by server")
	assert.Contains(t, string(content), "Reference Server")
}

func TestRouteStatusCount(t *testing.T) {
	rs := RouteStatus{Passed: 1, Failed: 2, Skipped: 3, Unknown: 4}
	assert.Equal(t, 1, rs.count(StatusPassed))
	assert.Equal(t, 2, rs.count(StatusFailed))
	assert.Equal(t, 3, rs.count(StatusSkipped))
	assert.Equal(t, 4, rs.count(StatusUnknown))
}
