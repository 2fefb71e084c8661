package report

import (
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var chartSeries = []struct {
	status Status
	name   string
	color  string
}{
	{StatusPassed, "Passed", "#28a745"},
	{StatusFailed, "Failed", "#dc3545"},
	{StatusSkipped, "Skipped", "#17a2b8"},
	{StatusUnknown, "Unknown error", "#6c757d"},
}

// NewChartsPage creates the page with the outcome charts of the document.
func NewChartsPage(doc *ReportDocument) *components.Page {
	page := components.NewPage()
	page.PageTitle = "RNAget Compliance Charts"
	page.AddCharts(
		newServerOutcomeChart(doc),
		newObjectTypeOutcomeChart(doc),
	)
	return page
}

// SaveChartsPage renders the charts page to a file.
func SaveChartsPage(page *components.Page, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(io.MultiWriter(f))
}

func newStackedBar(title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	return bar
}

// newServerOutcomeChart stacks test outcomes by server.
func newServerOutcomeChart(doc *ReportDocument) *charts.Bar {
	bar := newStackedBar("Test outcomes by server", "All object types")

	names := make([]string, 0, len(doc.Servers))
	counts := make([]map[Status]int, 0, len(doc.Servers))
	for _, s := range doc.Servers {
		names = append(names, s.ServerName)
		counts = append(counts, s.StatusCounts())
	}
	bar.SetXAxis(names)
	for _, serie := range chartSeries {
		data := make([]opts.BarData, 0, len(counts))
		for _, c := range counts {
			data = append(data, opts.BarData{Value: c[serie.status]})
		}
		bar.AddSeries(serie.name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: serie.color}))
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "outcome"}))
	return bar
}

// newObjectTypeOutcomeChart stacks test outcomes of every server by object type.
func newObjectTypeOutcomeChart(doc *ReportDocument) *charts.Bar {
	bar := newStackedBar("Test outcomes by object type", "All servers")

	titles := make([]string, 0, len(ObjectTypes))
	routes := make([]RouteStatus, len(ObjectTypes))
	for i, ot := range ObjectTypes {
		titles = append(titles, ot.Title())
		for _, s := range doc.Servers {
			rs := s.RouteStatus(ot)
			routes[i].Passed += rs.Passed
			routes[i].Failed += rs.Failed
			routes[i].Skipped += rs.Skipped
			routes[i].Unknown += rs.Unknown
		}
	}
	bar.SetXAxis(titles)
	for _, serie := range chartSeries {
		data := make([]opts.BarData, 0, len(routes))
		for _, rs := range routes {
			data = append(data, opts.BarData{Value: rs.count(serie.status)})
		}
		bar.AddSeries(serie.name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: serie.color}))
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "outcome"}))
	return bar
}

func (rs RouteStatus) count(s Status) int {
	switch s {
	case StatusPassed:
		return rs.Passed
	case StatusFailed:
		return rs.Failed
	case StatusSkipped:
		return rs.Skipped
	default:
		return rs.Unknown
	}
}
