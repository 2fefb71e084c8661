package report

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *ReportDocument {
	t.Helper()
	raw, err := os.ReadFile("testdata/results.json")
	require.NoError(t, err)
	doc, err := Parse(raw)
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	doc := loadFixture(t)
	require.Len(t, doc.Servers, 2)

	caltech := doc.Servers[0]
	assert.Equal(t, "Caltech RNAget", caltech.ServerName)
	assert.Equal(t, "https://rnaget.caltech.example/rnaget/", caltech.BaseURL)
	assert.Equal(t, "2024-05-01 10:00:00", caltech.DateTime)
	assert.Equal(t, 4, caltech.TotalTests)
	assert.Equal(t, 2, caltech.TotalWarning)
	assert.True(t, caltech.IsImplemented(ObjectTypeProjects))
	assert.False(t, caltech.IsImplemented(ObjectTypeExpressions))

	// ids keep the document order, not the sorted one
	assert.Equal(t, []string{"zz-study", "aa-study"}, caltech.Results(ObjectTypeStudies).IDs())

	tests := caltech.Results(ObjectTypeProjects).Tests("9c0eba51095d3939437e220db196e27b")
	require.Len(t, tests, 2)
	assert.Equal(t, StatusPassed, tests[0].Result)
	assert.Empty(t, tests[0].Edges, "edge_cases 0 is an empty list")
	assert.Equal(t, StatusFailed, tests[1].Result)
	assert.True(t, tests[1].Warning)
	assert.Equal(t, EdgeCases{
		{API: "GET /projects/search?version=1.0", Result: StatusPassed},
		{API: "GET /projects/search?name=x", Result: StatusSkipped},
	}, tests[1].Edges)

	assert.Empty(t, caltech.Results(ObjectTypeStudies).Tests("aa-study")[0].Edges, "edge_cases null is an empty list")
	assert.Equal(t, 0, caltech.CountTests(ObjectTypeExpressions))
	assert.Equal(t, 8, doc.CountTests())
}

func TestParseKeepsRawBytes(t *testing.T) {
	raw, err := os.ReadFile("testdata/results.json")
	require.NoError(t, err)
	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, doc.Raw)
}

func TestParseSupplementalFields(t *testing.T) {
	doc, err := Parse([]byte(`[{"server_name":"s","test_results":{"projects":{"p":[
		{"name":"project_get","result":2,"text":"boom","edge_cases":[],
		 "test_description":"Fetch a project","message":"exception raised","parents":["base_url"],"children":["project_search"]}
	]}}}]`))
	require.NoError(t, err)
	tr := doc.Servers[0].Results(ObjectTypeProjects).Tests("p")[0]
	assert.Equal(t, StatusUnknown, tr.Result)
	assert.Equal(t, "Fetch a project", tr.TestDescription)
	assert.Equal(t, "exception raised", tr.Message)
	assert.Equal(t, []string{"base_url"}, tr.Parents)
	assert.Equal(t, []string{"project_search"}, tr.Children)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `<html>`},
		{name: "object instead of list", raw: `{"server_name":"s"}`},
		{name: "missing server name", raw: `[{"base_url":"http://x"}]`},
		{name: "null server entry", raw: `[null]`},
		{name: "edge cases not a list", raw: `[{"server_name":"s","test_results":{"projects":{"p":[{"name":"a","result":1,"edge_cases":5}]}}}]`},
		{name: "test results as list", raw: `[{"server_name":"s","test_results":{"projects":[1,2]}}]`},
		{name: "result as string", raw: `[{"server_name":"s","test_results":{"projects":{"p":[{"name":"a","result":"1"}]}}}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			assert.ErrorIs(t, err, ErrMalformedReport)
		})
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status    Status
		wantLabel string
		wantClass string
		wantValid bool
	}{
		{StatusPassed, "PASSED", "text-success", true},
		{StatusSkipped, "SKIPPED", "text-info", true},
		{StatusFailed, "FAILED", "text-danger", true},
		{StatusUnknown, "UNKNOWN ERROR", "text-danger", true},
		{Status(7), "FAILED", "text-danger", false},
	}
	for _, tc := range tests {
		t.Run(tc.wantLabel, func(t *testing.T) {
			assert.Equal(t, tc.wantLabel, tc.status.Label())
			assert.Equal(t, tc.wantClass, tc.status.CSSClass())
			assert.Equal(t, tc.wantValid, tc.status.Valid())
		})
	}
}

func TestObjectType(t *testing.T) {
	tests := []struct {
		ot           ObjectType
		wantSingular string
		wantTitle    string
	}{
		{ObjectTypeProjects, "project", "Projects"},
		{ObjectTypeStudies, "study", "Studies"},
		{ObjectTypeExpressions, "expression", "Expressions"},
		{ObjectType("continuous"), "continuous", "Continuous"},
	}
	for _, tc := range tests {
		t.Run(string(tc.ot), func(t *testing.T) {
			assert.Equal(t, tc.wantSingular, tc.ot.Singular())
			assert.Equal(t, tc.wantTitle, tc.ot.Title())
		})
	}
}

func TestObjectResultsNil(t *testing.T) {
	var or *ObjectResults
	assert.Nil(t, or.IDs())
	assert.Nil(t, or.Tests("x"))
	assert.Equal(t, 0, or.Count())

	or = NewObjectResults().Add("b", &TestResult{Name: "t1"}).Add("a", &TestResult{Name: "t2"}).Add("b", &TestResult{Name: "t3"})
	assert.Equal(t, []string{"b", "a"}, or.IDs())
	assert.Len(t, or.Tests("b"), 2)
	assert.Equal(t, 3, or.Count())
}

func TestObjectResultsDuplicateKey(t *testing.T) {
	var or ObjectResults
	raw := `{"b": [{"name": "old"}], "a": [{"name": "t2"}], "b": [{"name": "new1"}, {"name": "new2"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &or))

	assert.Equal(t, []string{"b", "a"}, or.IDs())
	require.Len(t, or.Tests("b"), 2)
	assert.Equal(t, "new1", or.Tests("b")[0].Name)
	assert.Equal(t, "new2", or.Tests("b")[1].Name)
	assert.Equal(t, 3, or.Count())
}
