package serve

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rnaget/compliance-report/internal/report"
	"github.com/rnaget/compliance-report/internal/server"
)

type Input struct {
	dir           string
	serverAddress string
	uptime        time.Duration
}

func NewCmdServe() *cobra.Command {
	data := Input{}
	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Serve a saved report directory over HTTP.",
		Run: func(cmd *cobra.Command, args []string) {
			data.dir = args[0]
			if err := checkDir(data.dir); err != nil {
				log.Error(err)
				os.Exit(1)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := server.New(data.dir, data.serverAddress, data.uptime, nil).Run(ctx); err != nil {
				log.Error(err)
				os.Exit(1)
			}
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(
		&data.serverAddress, "server-address", "", server.DefaultAddress,
		"HTTP server address. Example: --server-address 0.0.0.0:9090",
	)
	cmd.Flags().DurationVarP(
		&data.uptime, "uptime", "", server.DefaultUptime,
		"How long the HTTP server stays up. Zero keeps it running until interrupted.",
	)
	return cmd
}

// checkDir makes sure the directory holds a rendered report.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "unable to read report directory %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}
	if _, err := os.Stat(dir + "/" + report.ReportFileNameIndexHTML); err != nil {
		return errors.Errorf("%s does not look like a report directory: %s is missing", dir, report.ReportFileNameIndexHTML)
	}
	return nil
}
