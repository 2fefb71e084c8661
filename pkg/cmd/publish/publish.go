package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rnaget/compliance-report/internal/publish"
	"github.com/rnaget/compliance-report/pkg/version"
)

type Input struct {
	dir    string
	bucket string
	region string
	prefix string
	dryRun bool
}

func NewCmdPublish() *cobra.Command {
	data := Input{}
	cmd := &cobra.Command{
		Use:   "publish <dir>",
		Short: "Publish a saved report directory to an S3 bucket.",
		Long: `Upload every file of a saved report directory to an S3 bucket. The AWS
credentials are read from the default chain (environment, shared config).

The bucket may be set with RNAGET_REPORT_PUBLISH_BUCKET.`,
		Run: func(cmd *cobra.Command, args []string) {
			data.dir = args[0]
			data.bucket = viper.GetString("publish.bucket")
			data.region = viper.GetString("publish.region")
			data.prefix = viper.GetString("publish.prefix")
			if err := publishReport(cmd.Context(), &data, cmd.OutOrStdout()); err != nil {
				log.Error(errors.Wrapf(err, "could not publish report: %v", args[0]))
				os.Exit(1)
			}
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&data.bucket, "bucket", "", "", "Destination S3 bucket name")
	cmd.Flags().StringVarP(&data.region, "region", "", publish.DefaultRegion, "Region of the S3 bucket")
	cmd.Flags().StringVarP(&data.prefix, "prefix", "", "", "Object key prefix. Example: --prefix reports/2024-05-01")
	cmd.Flags().BoolVarP(&data.dryRun, "dry-run", "", false, "List the objects without uploading them")

	for _, flag := range []string{"bucket", "region", "prefix"} {
		if err := viper.BindPFlag("publish."+flag, cmd.Flags().Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s\n", flag)
		}
	}
	return cmd
}

func publishReport(ctx context.Context, input *Input, out io.Writer) error {
	log.Info("Publishing the report to storage...")
	p, err := publish.NewPublisher(publish.Config{
		Bucket: input.bucket,
		Region: input.region,
		Prefix: input.prefix,
		DryRun: input.dryRun,
		Metadata: map[string]string{
			"generator": version.Version.String(),
		},
	})
	if err != nil {
		return err
	}
	uris, err := p.PublishDir(ctx, input.dir)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		fmt.Fprintln(out, uri)
	}
	return nil
}
