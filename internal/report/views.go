package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strings"
)

const (
	textReportHeading = "<h3>Compliance Report Text</h3>"
	serverSeparator   = "-----------------------------------------------------------------"
	edgeCaseTableHead = `<table style="margin-left:20px" class="table"><thead><tr><th>API</th><th>Result</th></tr></thead><tbody>`
	matrixHead        = "<tr><th>Server</th><th>Object</th><th>Test Case</th><th>Result</th></tr>"
	downloadMediaType = "text/json;charset=utf-8"
	downloadFileName  = "data.json"
)

// Views holds the markup written into the page regions: "text",
// "compliance_matrix" (thead/tbody) and "json".
type Views struct {
	Text       template.HTML `json:"-"`
	MatrixHead template.HTML `json:"-"`
	MatrixBody template.HTML `json:"-"`

	// JSON is the indented document shown by the viewer, Data the same
	// document as a script literal for the tree widget.
	JSON string      `json:"-"`
	Data template.JS `json:"-"`

	Download    template.HTML `json:"-"`
	DownloadURI string        `json:"-"`

	Rows []*MatrixRow `json:"-"`
}

// MatrixRow is one test outcome of one server in the compliance matrix.
type MatrixRow struct {
	Server     string
	ObjectType ObjectType
	ObjectID   string
	Test       string
	Result     Status
	Warning    bool
}

// Object returns the row's object column, e.g. "Projects: abc".
func (mr *MatrixRow) Object() string {
	return fmt.Sprintf("%s: %s", mr.ObjectType.Title(), mr.ObjectID)
}

// viewBuilder walks the document once, accumulating the text report and the
// matrix rows side by side.
type viewBuilder struct {
	opts   Options
	text   strings.Builder
	matrix strings.Builder
	rows   []*MatrixRow
}

func buildViews(doc *ReportDocument, opts Options) (*Views, error) {
	vb := &viewBuilder{opts: opts}
	vb.text.WriteString(textReportHeading)
	for _, server := range doc.Servers {
		vb.writeServer(server)
	}

	compact, err := compactJSON(doc.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	var script bytes.Buffer
	json.HTMLEscape(&script, compact)

	uri := DownloadURI(compact)
	return &Views{
		Text:        template.HTML(vb.text.String()),
		MatrixHead:  template.HTML(matrixHead),
		MatrixBody:  template.HTML(vb.matrix.String()),
		JSON:        indented.String(),
		Data:        template.JS(script.String()),
		Download:    template.HTML(downloadControl(uri)),
		DownloadURI: uri,
		Rows:        vb.rows,
	}, nil
}

func (vb *viewBuilder) writeServer(s *ServerReport) {
	name := html.EscapeString(s.ServerName)
	fmt.Fprintf(&vb.text, "<h4>Server name: %s</h4>", name)
	fmt.Fprintf(&vb.text, "<h4>Base URL: %s</h4>", html.EscapeString(s.BaseURL))
	fmt.Fprintf(&vb.text, "<p>Total tests: %d</p>", s.TotalTests)
	fmt.Fprintf(&vb.text, "<p>Total tests passed: %d</p>", s.TotalPassed)
	fmt.Fprintf(&vb.text, "<p>Total tests failed: %d</p>", s.TotalFailed)
	fmt.Fprintf(&vb.text, "<p>Total tests skipped: %d</p>", s.TotalSkipped)
	fmt.Fprintf(&vb.text, "<p>Total warnings generated: %d</p>", s.TotalWarning)
	fmt.Fprintf(&vb.text, "<h3>%s: Test result reports</h3>", name)

	for _, ot := range ObjectTypes {
		if s.IsImplemented(ot) {
			fmt.Fprintf(&vb.text, "<h3>%s</h3>", ot.Title())
		} else {
			fmt.Fprintf(&vb.text, "<h3>%s (not implemented)</h3>", ot.Title())
		}
		results := s.Results(ot)
		for _, id := range results.IDs() {
			fmt.Fprintf(&vb.text, "<h4>%s id: %s</h4>", ot.Singular(), html.EscapeString(id))
			for _, tr := range results.Tests(id) {
				vb.writeTest(tr)
				vb.addRow(&MatrixRow{
					Server:     s.ServerName,
					ObjectType: ot,
					ObjectID:   id,
					Test:       tr.Name,
					Result:     tr.Result,
					Warning:    tr.Warning,
				})
			}
		}
	}
	vb.text.WriteString(serverSeparator)
}

// writeTest emits the status line of a test. The warning flag is carried in
// the data but never changes the label.
func (vb *viewBuilder) writeTest(tr *TestResult) {
	style := tr.Result.Style()
	fmt.Fprintf(&vb.text, "<p class='tab1 %s'>%s: %s</p>", style.CSSClass, html.EscapeString(tr.Name), style.Label)
	fmt.Fprintf(&vb.text, "<p class='tab1'>---&gt;%s</p>&nbsp;", html.EscapeString(tr.Text))
	if len(tr.Edges) == 0 {
		return
	}
	vb.text.WriteString(edgeCaseTableHead)
	for _, ec := range tr.Edges {
		fmt.Fprintf(&vb.text, "<tr><td>%s</td>%s</tr>", html.EscapeString(ec.API), vb.edgeCaseCell(ec))
	}
	vb.text.WriteString("</tbody></table>")
}

// edgeCaseCell renders the result cell of an edge case. Historically the
// skipped branches tested a field that does not exist on the edge case, so a
// skipped edge case is shown as FAILED unless EdgeCaseSkips is set.
func (vb *viewBuilder) edgeCaseCell(ec EdgeCaseResult) string {
	switch {
	case ec.Result == StatusPassed:
		return `<td class="text-success">PASSED</td>`
	case ec.Result == StatusSkipped && vb.opts.EdgeCaseSkips:
		return `<td class="text-info">SKIPPED</td>`
	default:
		return `<td class="text-warning">FAILED</td>`
	}
}

func (vb *viewBuilder) addRow(row *MatrixRow) {
	vb.rows = append(vb.rows, row)
	style := row.Result.Style()
	fmt.Fprintf(&vb.matrix, "<tr><td>%s</td><td>%s</td><td>%s</td><td class='%s'>%s</td></tr>",
		html.EscapeString(row.Server),
		html.EscapeString(row.Object()),
		html.EscapeString(row.Test),
		style.CSSClass,
		style.Label,
	)
}

func compactJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DownloadURI builds the same-document data URI offering the report as a file.
func DownloadURI(data []byte) string {
	return "data:" + downloadMediaType + "," + encodeURIComponent(string(data))
}

func downloadControl(uri string) string {
	return fmt.Sprintf(`<a href="%s" download="%s"><button style="margin:10px; width:100%%" class="btn"><i class="fa fa-download"></i> Download</button></a>`,
		uri, downloadFileName)
}

// encodeURIComponent escapes everything but the unreserved marks of
// ECMAScript's encodeURIComponent, byte by byte over the UTF-8 encoding.
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
