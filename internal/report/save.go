package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	vfs "github.com/rnaget/compliance-report/internal/assets"
)

const (
	templateIndex  = "index.html"
	templateServer = "server.html"

	// pageWorkers caps the per-server pages rendered at once.
	pageWorkers = 4
)

var templateFuncs = template.FuncMap{
	"capitalize":     Capitalize,
	"formatTestName": FormatTestName,
	"anchor":         Anchor,
	"statusLabel":    func(s Status) string { return s.Label() },
	"statusClass":    func(s Status) string { return s.CSSClass() },
	"statusIcon":     func(s Status) string { return s.Style().Icon },
	"routes":         orderedRoutes,
	"edgeStatus":     edgeStatus,
}

// edgeStatus is the status an edge case is shown with, matching the text view.
func edgeStatus(s Status, skips bool) Status {
	if s == StatusPassed || (s == StatusSkipped && skips) {
		return s
	}
	return StatusFailed
}

type namedRoute struct {
	Title string
	RouteStatus
}

// orderedRoutes lists the route status of a server in object type order.
func orderedRoutes(ss *ServerSummary) []namedRoute {
	routes := make([]namedRoute, 0, len(ObjectTypes))
	for _, ot := range ObjectTypes {
		routes = append(routes, namedRoute{Title: ot.Title(), RouteStatus: ss.Routes[ot]})
	}
	return routes
}

// pageData is the value the page templates are executed with.
type pageData struct {
	Title       string
	GeneratedAt string
	Summary     *Summary
	Views       *Views

	EdgeCaseSkips bool

	// Server page only.
	Server   *ServerSummary
	Sections []*pageSection
}

type pageSection struct {
	Type        ObjectType
	Title       string
	Singular    string
	Implemented bool
	Route       RouteStatus
	Objects     []*pageObject
}

type pageObject struct {
	ID    string
	Tests []*TestResult
}

// prepareOutputDir creates the output directory. An existing directory is
// only replaced when force is set, and its previous content is removed;
// missing parents are never created.
func prepareOutputDir(path string, force bool) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return errors.Wrapf(err, "unable to check directory %s", path)
	case !info.IsDir():
		return fmt.Errorf("not a directory: %s", path)
	case !force:
		return fmt.Errorf("directory already exists: %s (use --force to overwrite)", path)
	default:
		log.Warnf("Overwriting existing directory %s", path)
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrapf(err, "unable to remove directory %s", path)
		}
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", path)
	}
	return nil
}

// SaveResults writes the pages and the artifacts of the report to path:
// index page, one page per server, stylesheet, raw data, summary, matrix
// sheet and charts.
func (re *Report) SaveResults(path string, force bool) error {
	re.lap("report-save/results")
	if err := prepareOutputDir(path, force); err != nil {
		return err
	}

	// data.json keeps the exact bytes received.
	if err := os.WriteFile(filepath.Join(path, ReportFileNameDataJSON), re.Document.Raw, 0644); err != nil {
		return fmt.Errorf("unable to save %s: %w", ReportFileNameDataJSON, err)
	}

	index := &pageData{
		Title:       "RNAget Compliance Report",
		GeneratedAt: re.Summary.GeneratedAt,
		Summary:     re.Summary,
		Views:       re.Views,

		EdgeCaseSkips: re.options.EdgeCaseSkips,
	}
	if err := renderToFile(templateIndex, filepath.Join(path, ReportFileNameIndexHTML), index); err != nil {
		return err
	}

	re.lap("report-save/pages")
	var g errgroup.Group
	g.SetLimit(pageWorkers)
	for idx, server := range re.Document.Servers {
		idx, server := idx, server
		g.Go(func() error {
			return re.saveServerPage(path, idx, server)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := copyAsset(ReportFileNameStyle, filepath.Join(path, ReportFileNameStyle)); err != nil {
		return err
	}

	re.lap("report-save/artifacts")
	if err := re.saveArtifacts(path); err != nil {
		return err
	}
	re.lap("report-save/results")
	return nil
}

func (re *Report) saveServerPage(path string, idx int, server *ServerReport) error {
	page := re.ServerPage(idx)
	data := &pageData{
		Title:       fmt.Sprintf("%s - RNAget Compliance Report", server.ServerName),
		GeneratedAt: re.Summary.GeneratedAt,
		Summary:     re.Summary,
		Views:       re.Views,
		Server:      re.Summary.Servers[idx],

		EdgeCaseSkips: re.options.EdgeCaseSkips,
	}
	for _, ot := range ObjectTypes {
		sec := &pageSection{
			Type:        ot,
			Title:       ot.Title(),
			Singular:    Capitalize(ot.Singular()),
			Implemented: server.IsImplemented(ot),
			Route:       server.RouteStatus(ot),
		}
		results := server.Results(ot)
		for _, id := range results.IDs() {
			sec.Objects = append(sec.Objects, &pageObject{ID: id, Tests: results.Tests(id)})
		}
		data.Sections = append(data.Sections, sec)
	}
	log.Debugf("Saving server page %s", page)
	return renderToFile(templateServer, filepath.Join(path, page), data)
}

// saveArtifacts writes the secondary artifacts. Sheet and chart failures are
// only logged.
func (re *Report) saveArtifacts(path string) error {
	summary, err := re.Summary.ShowJSON()
	if err != nil {
		return fmt.Errorf("unable to marshal report summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, ReportFileNameSummaryJSON), []byte(summary), 0644); err != nil {
		return fmt.Errorf("unable to save %s: %w", ReportFileNameSummaryJSON, err)
	}
	if err := SaveMatrixSheet(filepath.Join(path, ReportFileNameMatrixXLSX), re.Document, re.Views.Rows); err != nil {
		log.Errorf("unable to save %s: %v", ReportFileNameMatrixXLSX, err)
	}
	if err := SaveChartsPage(NewChartsPage(re.Document), filepath.Join(path, ReportFileNameCharts)); err != nil {
		log.Errorf("unable to save %s: %v", ReportFileNameCharts, err)
	}
	return nil
}

func readAsset(name string) ([]byte, error) {
	fsys := vfs.GetData()
	if fsys == nil {
		return nil, errors.New("report templates are not loaded")
	}
	src := fmt.Sprintf("%s/%s", ReportTemplateBasePath, name)
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		return nil, fmt.Errorf("unable to read file %q from VFS: %w", src, err)
	}
	return data, nil
}

// renderToFile executes a page template. Delimiters are '[[]]' so the
// pages can use '{{}}' in their scripts.
func renderToFile(name, dest string, data *pageData) error {
	src, err := readAsset(name)
	if err != nil {
		return err
	}
	tmpl, err := template.New(name).Delims("[[", "]]").Funcs(templateFuncs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("unable to create template for %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("unable to process template for %q: %w", name, err)
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to save %q: %w", dest, err)
	}
	return nil
}

func copyAsset(name, dest string) error {
	data, err := readAsset(name)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}
