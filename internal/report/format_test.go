package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Projects", Capitalize("projects"))
	assert.Equal(t, "Project Get", FormatTestName("project_get"))
	assert.Equal(t, "Expression Search Filters", FormatTestName("expression_search_filters"))
	assert.Equal(t, "Project_Get", Anchor("Project Get"))
	assert.Equal(t, "a_b", Anchor("a, b"))
}

func TestServerPageName(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{name: "spaces and case", server: "Caltech RNAget", want: "caltechrnaget.html"},
		{name: "path separator", server: "acme/rnaget", want: "acme-rnaget.html"},
		{name: "windows separator", server: `acme\rnaget`, want: "acme-rnaget.html"},
		{name: "parent directory", server: "../escaped", want: "-escaped.html"},
		{name: "nested parent directory", server: "a/../../b", want: "a-.-.-b.html"},
		{name: "dots only", server: "..", want: ""},
		{name: "separators only", server: "///", want: ""},
		{name: "empty", server: "", want: ""},
		{name: "unicode", server: "Servidor Público", want: "servidorp-blico.html"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := ServerPageName(tc.server)
			assert.Equal(t, tc.want, page)
			assert.NotContains(t, page, "/")
			assert.NotContains(t, page, "..")
		})
	}
}

func TestServerPageNames(t *testing.T) {
	tests := []struct {
		name    string
		servers []string
		want    []string
	}{
		{
			name:    "collapsed names",
			servers: []string{"Ref Server", "Other", "ref server", "RefServer"},
			want:    []string{"refserver.html", "other.html", "refserver-2.html", "refserver-3.html"},
		},
		{
			name:    "suffix already taken",
			servers: []string{"ab", "a b", "ab-2"},
			want:    []string{"ab.html", "ab-2.html", "ab-2-2.html"},
		},
		{
			name:    "taken before the collision",
			servers: []string{"ab-2", "ab", "a b"},
			want:    []string{"ab-2.html", "ab.html", "ab-3.html"},
		},
		{
			name:    "unusable names",
			servers: []string{"..", "", "server-1"},
			want:    []string{"server-1.html", "server-2.html", "server-1-2.html"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := &ReportDocument{}
			for _, name := range tc.servers {
				doc.Servers = append(doc.Servers, &ServerReport{ServerName: name})
			}
			assert.Equal(t, tc.want, ServerPageNames(doc))
		})
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		ts   time.Time
		want string
	}{
		{ts: time.Date(2024, time.May, 1, 15, 4, 0, 0, time.FixedZone("BRT", -3*3600)), want: "May 01, 2024 at  6:04 PM (UTC)"},
		{ts: time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC), want: "May 01, 2024 at 10:30 AM (UTC)"},
		{ts: time.Date(2024, time.May, 1, 0, 5, 0, 0, time.UTC), want: "May 01, 2024 at 12:05 AM (UTC)"},
		{ts: time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC), want: "May 01, 2024 at 12:00 PM (UTC)"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Timestamp(tc.ts))
		})
	}
}

func TestRouteStatus(t *testing.T) {
	doc := loadFixture(t)

	tests := []struct {
		name   string
		server int
		ot     ObjectType
		want   RouteStatus
	}{
		{
			name:   "failed project",
			server: 0,
			ot:     ObjectTypeProjects,
			want:   RouteStatus{Button: "btn-danger", Text: "1 Failed / 0 Skipped", Passed: 1, Failed: 1},
		},
		{
			name:   "skipped study",
			server: 0,
			ot:     ObjectTypeStudies,
			want:   RouteStatus{Button: "btn-danger", Text: "0 Failed / 1 Skipped", Passed: 1, Skipped: 1},
		},
		{
			name:   "no tests",
			server: 0,
			ot:     ObjectTypeExpressions,
			want:   RouteStatus{Button: "btn-success", Text: "Pass"},
		},
		{
			name:   "all passed",
			server: 1,
			ot:     ObjectTypeStudies,
			want:   RouteStatus{Button: "btn-success", Text: "Pass", Passed: 2},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, doc.Servers[tc.server].RouteStatus(tc.ot))
		})
	}
}

func TestStatusCounts(t *testing.T) {
	doc := loadFixture(t)
	assert.Equal(t, map[Status]int{
		StatusPassed:  2,
		StatusFailed:  1,
		StatusSkipped: 1,
		StatusUnknown: 0,
	}, doc.Servers[0].StatusCounts())
}
