// Package publish uploads a rendered report directory to an S3 bucket.
package publish

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultRegion = "us-east-1"

// Config selects the destination of the upload.
type Config struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key, e.g. "reports/2024-05-01".
	Prefix   string
	DryRun   bool
	Metadata map[string]string
}

// Publisher uploads files to S3.
type Publisher struct {
	cfg      Config
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
}

// NewPublisher creates the S3 clients for the configured region.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create aws session")
	}
	return newPublisher(cfg, s3.New(sess), s3manager.NewUploader(sess)), nil
}

func newPublisher(cfg Config, svc s3iface.S3API, uploader s3manageriface.UploaderAPI) *Publisher {
	return &Publisher{cfg: cfg, svc: svc, uploader: uploader}
}

// checkBucketExists checks if the bucket exists in the S3 storage.
func (p *Publisher) checkBucketExists(ctx context.Context) error {
	_, err := p.svc.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.cfg.Bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to check if bucket %s exists: %w", p.cfg.Bucket, err)
	}
	return nil
}

// ObjectKey returns the key a file of the directory is stored at.
func (p *Publisher) ObjectKey(rel string) string {
	return path.Join(strings.Trim(p.cfg.Prefix, "/"), filepath.ToSlash(rel))
}

// PublishDir uploads every regular file under dir and returns the object
// URIs. In dry-run mode nothing is sent, the bucket is not checked either.
func (p *Publisher) PublishDir(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, fpath)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read directory %s", dir)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to publish in %s", dir)
	}

	if !p.cfg.DryRun {
		if err := p.checkBucketExists(ctx); err != nil {
			return nil, err
		}
	}

	uris := make([]string, 0, len(files))
	for _, fpath := range files {
		rel, err := filepath.Rel(dir, fpath)
		if err != nil {
			return uris, err
		}
		key := p.ObjectKey(rel)
		uri := fmt.Sprintf("s3://%s/%s", p.cfg.Bucket, key)
		if p.cfg.DryRun {
			log.Warnf("DRY-RUN mode: skipping upload to %s", uri)
			uris = append(uris, uri)
			continue
		}
		if err := p.uploadFile(ctx, fpath, key); err != nil {
			return uris, err
		}
		log.Debugf("Uploaded %s to %s", fpath, uri)
		uris = append(uris, uri)
	}
	log.Infof("Report published successfully to s3://%s/%s", p.cfg.Bucket, strings.Trim(p.cfg.Prefix, "/"))
	return uris, nil
}

func (p *Publisher) uploadFile(ctx context.Context, fpath, key string) error {
	fd, err := os.Open(fpath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", fpath, err)
	}
	defer fd.Close()

	input := &s3manager.UploadInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
		Body:   fd,
	}
	if ct := mime.TypeByExtension(filepath.Ext(fpath)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if len(p.cfg.Metadata) > 0 {
		input.Metadata = aws.StringMap(p.cfg.Metadata)
	}
	if _, err := p.uploader.UploadWithContext(ctx, input); err != nil {
		return errors.Wrapf(err, "failed to upload file %s to bucket %s", filepath.Base(fpath), p.cfg.Bucket)
	}
	return nil
}
