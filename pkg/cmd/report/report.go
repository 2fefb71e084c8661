package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rnaget/compliance-report/internal/archive"
	"github.com/rnaget/compliance-report/internal/report"
	"github.com/rnaget/compliance-report/internal/server"
)

type Input struct {
	source        string
	saveTo        string
	force         bool
	serverAddress string
	serverSkip    bool
	saveOnly      bool
	uptime        time.Duration
	archive       bool
	verbose       bool
	json          bool
	yaml          bool
	edgeCaseSkips bool
	strict        bool
}

func NewCmdReport() *cobra.Command {
	data := Input{}
	cmd := &cobra.Command{
		Use:   "report <results.json|URL|->",
		Short: "Create a report from compliance test results.",
		Long: `Render the results of the RNAget compliance suite into HTML pages: a text
report, a compliance matrix across servers and the raw JSON document.

The results are read from a file (.json or .json.xz), an http(s) URL, or stdin when
the source is '-'.`,
		Run: func(cmd *cobra.Command, args []string) {
			data.source = args[0]
			bindViper(&data)
			if err := checkFlags(&data); err != nil {
				log.Error(err)
				os.Exit(1)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := processResult(ctx, &data, os.Stdout); err != nil {
				log.Error(UserMessage(errors.Wrapf(err, "could not process results: %v", args[0])))
				os.Exit(1)
			}
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(
		&data.saveTo, "save-to", "s", "",
		"Save the rendered report to a directory. Example: -s ./report",
	)
	cmd.Flags().BoolVarP(
		&data.force, "force", "f", false,
		"Overwrite the --save-to directory when it already exists.",
	)
	cmd.Flags().StringVarP(
		&data.serverAddress, "server-address", "", server.DefaultAddress,
		"HTTP server address to serve files when --save-to is used. Example: --server-address 0.0.0.0:9090",
	)
	cmd.Flags().BoolVarP(
		&data.serverSkip, "server-skip", "", false,
		"Do not start the HTTP server when --save-to is used.",
	)
	cmd.Flags().BoolVarP(
		&data.saveOnly, "save-only", "", false,
		"Save data and exit. Requires --save-to. Example: -s ./report --save-only",
	)
	cmd.Flags().DurationVarP(
		&data.uptime, "uptime", "", server.DefaultUptime,
		"How long the HTTP server stays up. Zero keeps it running until interrupted.",
	)
	cmd.Flags().BoolVarP(
		&data.archive, "archive", "", false,
		"Pack the --save-to directory into <dir>.tar.xz.",
	)
	cmd.Flags().BoolVarP(
		&data.verbose, "verbose", "v", false,
		"Show the tests not passed",
	)
	cmd.Flags().BoolVarP(
		&data.json, "json", "", false,
		"Show the summary in json format",
	)
	cmd.Flags().BoolVarP(
		&data.yaml, "yaml", "", false,
		"Show the summary in yaml format",
	)
	cmd.Flags().BoolVarP(
		&data.edgeCaseSkips, "edge-case-skips", "", false,
		"Show skipped edge cases as SKIPPED instead of FAILED.",
	)
	cmd.Flags().BoolVarP(
		&data.strict, "strict", "", false,
		"Fail when servers disagree on the number of tests of an object type.",
	)

	for _, flag := range []string{"save-to", "force", "server-address", "uptime", "edge-case-skips", "strict"} {
		if err := viper.BindPFlag("report."+flag, cmd.Flags().Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s\n", flag)
		}
	}
	return cmd
}

// bindViper reads the values that may come from the environment or the
// config file, e.g. RNAGET_REPORT_REPORT_SAVE_TO.
func bindViper(input *Input) {
	input.saveTo = viper.GetString("report.save-to")
	input.force = viper.GetBool("report.force")
	input.serverAddress = viper.GetString("report.server-address")
	input.uptime = viper.GetDuration("report.uptime")
	input.edgeCaseSkips = viper.GetBool("report.edge-case-skips")
	input.strict = viper.GetBool("report.strict")
}

func checkFlags(input *Input) error {
	if input.saveOnly && input.saveTo == "" {
		return errors.New("--save-only requires --save-to")
	}
	if input.archive && input.saveTo == "" {
		return errors.New("--archive requires --save-to")
	}
	if input.json && input.yaml {
		return errors.New("--json and --yaml are mutually exclusive")
	}
	if input.saveOnly {
		input.serverSkip = true
	}
	return nil
}

// processResult renders the results and show the summary.
func processResult(ctx context.Context, input *Input, out io.Writer) error {
	log.Println("Creating report...")
	renderer := report.NewRenderer(report.Options{
		EdgeCaseSkips: input.edgeCaseSkips,
		Strict:        input.strict,
	})
	renderer.Timers.Add("report-total")
	start := time.Now()

	re, err := renderer.Render(ctx, input.source)
	if err != nil {
		return err
	}

	if input.saveTo != "" {
		if err := re.SaveResults(input.saveTo, input.force); err != nil {
			return errors.Wrap(err, "unable to save results")
		}
		log.Infof("Report saved to %s", input.saveTo)
		if input.archive {
			renderer.Timers.Add("report-archive")
			if err := archive.Create(input.saveTo, archive.DefaultPath(input.saveTo)); err != nil {
				return err
			}
			renderer.Timers.Add("report-archive")
		}
	}
	renderer.Timers.Add("report-total")

	switch {
	case input.json:
		val, err := re.Summary.ShowJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, val)
	case input.yaml:
		val, err := re.Summary.ShowYAML()
		if err != nil {
			return err
		}
		fmt.Fprint(out, val)
	default:
		showReportSummary(out, re, input.verbose)
	}

	if input.saveTo == "" {
		return nil
	}
	if input.serverSkip {
		log.Infof("The report server is not enabled (--server-skip=true), you'll need to navigate it locally")
		log.Infof("To read the report open your browser and navigate to the path file://%s/%s", input.saveTo, report.ReportFileNameIndexHTML)
		return nil
	}

	srv := server.New(input.saveTo, input.serverAddress, input.uptime, nil)
	srv.Metrics.ObserveRender(time.Since(start).Seconds(), len(re.Document.Servers))
	return srv.Run(ctx)
}

func showReportSummary(out io.Writer, re *report.Report, verbose bool) {
	fmt.Fprintf(out, "\n> RNAget Compliance Summary <\n\n")
	tbWriter := tabwriter.NewWriter(out, 0, 8, 1, '\t', tabwriter.AlignRight)

	fmt.Fprintf(tbWriter, " Generated at\t: %s\n", re.Summary.GeneratedAt)
	fmt.Fprintf(tbWriter, " Total tests\t: %d\n", re.Summary.TotalTests)
	if pr := re.Summary.PassRate; pr != nil {
		fmt.Fprintf(tbWriter, " Pass rate (min/mean/max)\t: %.1f%% / %.1f%% / %.1f%%\n", pr.Min, pr.Mean, pr.Max)
	}
	fmt.Fprint(tbWriter, "\t\t\n")

	for idx, s := range re.Summary.Servers {
		fmt.Fprintf(tbWriter, " Server\t: %s\n", s.Name)
		fmt.Fprintf(tbWriter, " - Base URL\t: %s\n", s.BaseURL)
		fmt.Fprintf(tbWriter, " - Tests\t: %d\n", s.Total)
		fmt.Fprintf(tbWriter, " - Passed\t: %d\n", s.Passed)
		fmt.Fprintf(tbWriter, " - Failed\t: %d\n", s.Failed)
		fmt.Fprintf(tbWriter, " - Skipped\t: %d\n", s.Skipped)
		fmt.Fprintf(tbWriter, " - Warnings\t: %d\n", s.Warnings)
		for _, ot := range report.ObjectTypes {
			fmt.Fprintf(tbWriter, " - %s\t: %s\n", ot.Title(), s.Routes[ot].Text)
		}
		if verbose {
			showNotPassed(tbWriter, re.Document.Servers[idx])
		}
		fmt.Fprint(tbWriter, "\t\t\n")
	}
	tbWriter.Flush()
}

func showNotPassed(w io.Writer, s *report.ServerReport) {
	for _, ot := range report.ObjectTypes {
		results := s.Results(ot)
		for _, id := range results.IDs() {
			for _, tr := range results.Tests(id) {
				if tr.Result == report.StatusPassed {
					continue
				}
				fmt.Fprintf(w, "   %s %s\t: %s\t: %s\n", ot.Singular(), id, tr.Name, tr.Result.Label())
			}
		}
	}
}

// UserMessage prefixes the error with a short description of its kind.
func UserMessage(err error) string {
	kinds := []struct {
		target error
		msg    string
	}{
		{report.ErrFetch, "unable to read the results"},
		{report.ErrNoData, "no data"},
		{report.ErrMalformedReport, "malformed report"},
		{report.ErrUnknownResult, "unknown test result"},
		{report.ErrTestCountMismatch, "test count mismatch between servers"},
		{report.ErrTestOrderMismatch, "test order mismatch between servers"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return fmt.Sprintf("%s: %v", k.msg, err)
		}
	}
	return err.Error()
}
