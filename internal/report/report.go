// Package report renders a compliance test report produced by the RNAget
// compliance suite into HTML views: a narrative text report, a cross-server
// compliance matrix and a raw JSON viewer with a download link.
//
// The flow follows a small ETL:
// - Load: fetch the JSON document from a file, URL or stdin, and parse it
// - Validate: check the document shape before anything is rendered
// - Render: build the views and write the pages and artifacts to a directory
//
// Outcomes are never computed here, only formatted from the document.
package report

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rnaget/compliance-report/internal/metrics"
)

// Options changes how the views are rendered.
type Options struct {
	// EdgeCaseSkips shows skipped edge cases as SKIPPED. By default they are
	// shown as FAILED, as the compliance suite always did.
	EdgeCaseSkips bool

	// Strict fails validation when servers disagree on test counts.
	Strict bool
}

// Renderer loads report documents and renders their views.
type Renderer struct {
	Loader  *Loader
	Options Options
	Timers  *metrics.Timers

	now func() time.Time
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		Loader:  NewLoader(),
		Options: opts,
		Timers:  metrics.NewTimers(),
		now:     time.Now,
	}
}

// Report is a rendered document.
type Report struct {
	Document *ReportDocument
	Views    *Views
	Summary  *Summary

	options Options
	timers  *metrics.Timers
}

// Render fetches the document from source, validates and renders it.
func (r *Renderer) Render(ctx context.Context, source string) (*Report, error) {
	r.Timers.Lap("report-load")
	doc, err := r.Loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return r.RenderDocument(doc)
}

// RenderDocument validates and renders an already loaded document.
func (r *Renderer) RenderDocument(doc *ReportDocument) (*Report, error) {
	r.Timers.Lap("report-validate")
	if err := doc.Validate(r.Options.Strict); err != nil {
		return nil, err
	}

	r.Timers.Lap("report-views")
	views, err := buildViews(doc, r.Options)
	if err != nil {
		return nil, err
	}
	log.Debugf("Rendered %d servers, %d matrix rows", len(doc.Servers), len(views.Rows))

	r.Timers.Lap("report-summary")
	summary := NewSummary(doc, r.now())
	summary.Runtime = r.Timers

	return &Report{
		Document: doc,
		Views:    views,
		Summary:  summary,
		options:  r.Options,
		timers:   r.Timers,
	}, nil
}

// ServerPage returns the page file name of the server at idx, as listed in
// the summary.
func (re *Report) ServerPage(idx int) string {
	if idx < 0 || idx >= len(re.Summary.Servers) {
		return ""
	}
	return re.Summary.Servers[idx].Page
}

func (re *Report) lap(k string) {
	if re.timers != nil {
		re.timers.Lap(k)
	}
}

// String is a one line description used in logs.
func (re *Report) String() string {
	return fmt.Sprintf("%d servers, %d tests", len(re.Document.Servers), re.Summary.TotalTests)
}
