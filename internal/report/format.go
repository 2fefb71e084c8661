package report

import (
	"fmt"
	"strings"
	"time"
)

// The generation date reads "May 01, 2024 at  6:04 PM (UTC)": the hour is
// padded with a space to two columns, which has no time layout verb.
const (
	timestampDateLayout = "January 02, 2006"
	timestampTimeLayout = ":04 PM (MST)"
)

// Capitalize upper-cases the first letter of a word.
func Capitalize(text string) string {
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// FormatTestName turns a test identifier into a title: "project_get" -> "Project Get".
func FormatTestName(text string) string {
	parts := strings.Split(text, "_")
	for i, p := range parts {
		parts[i] = Capitalize(p)
	}
	return strings.Join(parts, " ")
}

// ServerPageName is the file name of the per-server report page. The name
// is lowercased without spaces and restricted to [a-z0-9._-], so it never
// leaves the output directory. It is empty when nothing usable is left.
func ServerPageName(serverName string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return -1
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(serverName))
	for strings.Contains(base, "..") {
		base = strings.ReplaceAll(base, "..", ".")
	}
	base = strings.Trim(base, ".")
	if strings.Trim(base, "-") == "" {
		return ""
	}
	return base + ".html"
}

// ServerPageNames returns the page file name of every server, in document
// order. Servers without a usable name get server-<n>.html, and names
// already taken get the first free numeric suffix.
func ServerPageNames(doc *ReportDocument) []string {
	seen := make(map[string]bool, len(doc.Servers))
	pages := make([]string, 0, len(doc.Servers))
	for idx, s := range doc.Servers {
		page := ServerPageName(s.ServerName)
		if page == "" {
			page = fmt.Sprintf("server-%d.html", idx+1)
		}
		base := strings.TrimSuffix(page, ".html")
		for n := 2; seen[page]; n++ {
			page = fmt.Sprintf("%s-%d.html", base, n)
		}
		seen[page] = true
		pages = append(pages, page)
	}
	return pages
}

// Anchor turns a label into an html id, dropping spaces and commas.
func Anchor(text string) string {
	return strings.ReplaceAll(strings.ReplaceAll(text, " ", "_"), ",", "")
}

// Timestamp formats the generation time in UTC.
func Timestamp(t time.Time) string {
	t = t.UTC()
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s at %2d%s", t.Format(timestampDateLayout), hour, t.Format(timestampTimeLayout))
}

// RouteStatus summarizes the outcomes of every test of an object type.
type RouteStatus struct {
	Button  string `json:"btn" yaml:"btn"`
	Text    string `json:"text" yaml:"text"`
	Passed  int    `json:"passed" yaml:"passed"`
	Failed  int    `json:"failed" yaml:"failed"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Unknown int    `json:"unknown" yaml:"unknown"`
}

// RouteStatus counts the results of an object type. Any failed or skipped
// test turns the route red.
func (sr *ServerReport) RouteStatus(ot ObjectType) RouteStatus {
	rs := RouteStatus{}
	results := sr.Results(ot)
	for _, id := range results.IDs() {
		for _, tr := range results.Tests(id) {
			switch tr.Result {
			case StatusPassed:
				rs.Passed++
			case StatusFailed:
				rs.Failed++
			case StatusSkipped:
				rs.Skipped++
			default:
				rs.Unknown++
			}
		}
	}
	rs.Button, rs.Text = "btn-success", "Pass"
	if rs.Failed > 0 || rs.Skipped > 0 {
		rs.Button = "btn-danger"
		rs.Text = fmt.Sprintf("%d Failed / %d Skipped", rs.Failed, rs.Skipped)
	}
	return rs
}

// StatusCounts counts the test results of a server by status.
func (sr *ServerReport) StatusCounts() map[Status]int {
	counts := make(map[Status]int, len(statusStyles))
	for _, ot := range ObjectTypes {
		rs := sr.RouteStatus(ot)
		counts[StatusPassed] += rs.Passed
		counts[StatusFailed] += rs.Failed
		counts[StatusSkipped] += rs.Skipped
		counts[StatusUnknown] += rs.Unknown
	}
	return counts
}
