package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

const (
	ReportFileNameIndexHTML   = "index.html"
	ReportFileNameStyle       = "report.css"
	ReportFileNameDataJSON    = "data.json"
	ReportFileNameSummaryJSON = "rnaget-report-summary.json"
	ReportFileNameMatrixXLSX  = "compliance-matrix.xlsx"
	ReportFileNameCharts      = "rnaget-charts.html"
	ReportTemplateBasePath    = "data/templates/report"
)

// Status is the tri-state outcome of a test, as written by the test runner.
type Status int

const (
	StatusFailed  Status = -1
	StatusSkipped Status = 0
	StatusPassed  Status = 1
	// StatusUnknown is emitted by the runner when a test raised unexpectedly.
	StatusUnknown Status = 2
)

// StatusStyle is how a status is presented in the HTML views.
type StatusStyle struct {
	Label    string `json:"label"`
	CSSClass string `json:"cssClass"`
	Icon     string `json:"icon"`
}

var statusStyles = map[Status]StatusStyle{
	StatusFailed:  {Label: "FAILED", CSSClass: "text-danger", Icon: "fa-times-circle"},
	StatusSkipped: {Label: "SKIPPED", CSSClass: "text-info", Icon: "fa-ban"},
	StatusPassed:  {Label: "PASSED", CSSClass: "text-success", Icon: "fa-check-circle"},
	StatusUnknown: {Label: "UNKNOWN ERROR", CSSClass: "text-danger", Icon: "fa-times-circle"},
}

// Valid reports whether the status is one the runner can produce.
func (s Status) Valid() bool {
	_, ok := statusStyles[s]
	return ok
}

// Style returns the presentation of the status. Values outside the table are
// presented as failures.
func (s Status) Style() StatusStyle {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return statusStyles[StatusFailed]
}

func (s Status) Label() string    { return s.Style().Label }
func (s Status) CSSClass() string { return s.Style().CSSClass }

// ObjectType is one of the RNAget API object families a test targets.
type ObjectType string

const (
	ObjectTypeProjects    ObjectType = "projects"
	ObjectTypeStudies     ObjectType = "studies"
	ObjectTypeExpressions ObjectType = "expressions"
)

// ObjectTypes is the fixed rendering order of object families.
var ObjectTypes = []ObjectType{
	ObjectTypeProjects,
	ObjectTypeStudies,
	ObjectTypeExpressions,
}

var singularObjectTypes = map[ObjectType]string{
	ObjectTypeProjects:    "project",
	ObjectTypeStudies:     "study",
	ObjectTypeExpressions: "expression",
}

// Singular returns the singular noun, e.g. "study" for "studies".
func (ot ObjectType) Singular() string {
	if s, ok := singularObjectTypes[ot]; ok {
		return s
	}
	return string(ot)
}

// Title returns the capitalized plural, e.g. "Studies".
func (ot ObjectType) Title() string {
	return Capitalize(string(ot))
}

// EdgeCaseResult is a sub-check of a test against a single API endpoint.
type EdgeCaseResult struct {
	API    string `json:"api"`
	Result Status `json:"result"`
}

// EdgeCases is the list of edge case results of a test. The runner writes the
// number 0 instead of an empty list when a test has no edge cases.
type EdgeCases []EdgeCaseResult

func (ec *EdgeCases) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*ec = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []EdgeCaseResult
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*ec = items
		return nil
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("edge_cases: expected a list or 0: %w", err)
	}
	if n != 0 {
		return fmt.Errorf("edge_cases: expected a list or 0, got %v", n)
	}
	*ec = nil
	return nil
}

// TestResult is the outcome of one test against one API object.
type TestResult struct {
	Name    string    `json:"name"`
	Result  Status    `json:"result"`
	Warning bool      `json:"warning"`
	Text    string    `json:"text"`
	Edges   EdgeCases `json:"edge_cases"`

	TestDescription string   `json:"test_description,omitempty"`
	Message         string   `json:"message,omitempty"`
	Description     string   `json:"description,omitempty"`
	Parents         []string `json:"parents,omitempty"`
	Children        []string `json:"children,omitempty"`
}

// ObjectResults maps object ids to their test results, keeping the ids in the
// order they appear in the document.
type ObjectResults struct {
	ids   []string
	tests map[string][]*TestResult
}

// NewObjectResults creates an empty ObjectResults.
func NewObjectResults() *ObjectResults {
	return &ObjectResults{tests: make(map[string][]*TestResult)}
}

// Add appends tests to an object id, registering the id on first use.
func (or *ObjectResults) Add(id string, tests ...*TestResult) *ObjectResults {
	if _, ok := or.tests[id]; !ok {
		or.ids = append(or.ids, id)
	}
	or.tests[id] = append(or.tests[id], tests...)
	return or
}

// Set replaces the tests of an object id. A new id is appended, an existing
// one keeps its position, like a repeated key in a JSON object.
func (or *ObjectResults) Set(id string, tests []*TestResult) *ObjectResults {
	if _, ok := or.tests[id]; !ok {
		or.ids = append(or.ids, id)
	}
	or.tests[id] = tests
	return or
}

// IDs returns the object ids in document order.
func (or *ObjectResults) IDs() []string {
	if or == nil {
		return nil
	}
	return or.ids
}

// Tests returns the test results of an object id.
func (or *ObjectResults) Tests(id string) []*TestResult {
	if or == nil {
		return nil
	}
	return or.tests[id]
}

// Count returns the number of test results across all object ids.
func (or *ObjectResults) Count() int {
	if or == nil {
		return 0
	}
	total := 0
	for _, tests := range or.tests {
		total += len(tests)
	}
	return total
}

func (or *ObjectResults) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("test_results: expected an object keyed by id, got %v", tok)
	}
	or.ids = nil
	or.tests = make(map[string][]*TestResult)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return errors.Errorf("test_results: unexpected key %v", keyTok)
		}
		var tests []*TestResult
		if err := dec.Decode(&tests); err != nil {
			return errors.Wrapf(err, "test_results[%q]", id)
		}
		or.Set(id, tests)
	}
	_, err = dec.Token()
	return err
}

// ServerReport is the result of a compliance run against a single server.
type ServerReport struct {
	ServerName   string `json:"server_name"`
	BaseURL      string `json:"base_url"`
	DateTime     string `json:"date_time,omitempty"`
	TotalTests   int    `json:"total_tests"`
	TotalPassed  int    `json:"total_tests_passed"`
	TotalFailed  int    `json:"total_tests_failed"`
	TotalSkipped int    `json:"total_tests_skipped"`
	TotalWarning int    `json:"total_warnings"`

	Implemented map[ObjectType]bool           `json:"implemented"`
	TestResults map[ObjectType]*ObjectResults `json:"test_results"`
}

// IsImplemented reports whether the server declared the object type.
func (sr *ServerReport) IsImplemented(ot ObjectType) bool {
	return sr.Implemented[ot]
}

// Results returns the results for an object type, nil when absent.
func (sr *ServerReport) Results(ot ObjectType) *ObjectResults {
	return sr.TestResults[ot]
}

// CountTests returns the number of test results recorded for an object type.
func (sr *ServerReport) CountTests(ot ObjectType) int {
	return sr.Results(ot).Count()
}

// TestNames lists the test names of an object type in document order.
func (sr *ServerReport) TestNames(ot ObjectType) []string {
	results := sr.Results(ot)
	names := make([]string, 0, results.Count())
	for _, id := range results.IDs() {
		for _, tr := range results.Tests(id) {
			names = append(names, tr.Name)
		}
	}
	return names
}

// ReportDocument is the parsed report with the raw bytes it was decoded from.
type ReportDocument struct {
	Servers []*ServerReport
	Raw     []byte
}

// Parse decodes a report document. The raw bytes are kept untouched.
func Parse(raw []byte) (*ReportDocument, error) {
	var servers []*ServerReport
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	for idx, s := range servers {
		if s == nil || s.ServerName == "" {
			return nil, fmt.Errorf("%w: server entry %d has no server_name", ErrMalformedReport, idx)
		}
	}
	return &ReportDocument{Servers: servers, Raw: raw}, nil
}

// CountTests returns the number of test results in the document.
func (rd *ReportDocument) CountTests() int {
	total := 0
	for _, s := range rd.Servers {
		for _, ot := range ObjectTypes {
			total += s.CountTests(ot)
		}
	}
	return total
}
