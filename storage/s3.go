package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mw_harvester/config"
	"mw_harvester/models"
)

// S3Uploader archives each CSV export to S3-compatible storage.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Uploader creates a new S3 uploader. Static credentials are used when
// given, otherwise the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		now:    time.Now,
	}, nil
}

// Upload uploads data to S3 with the given key
func (u *S3Uploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Write uploads records as one timestamped CSV object. The body must be
// seekable for plain-HTTP endpoints.
func (u *S3Uploader) Write(ctx context.Context, records []models.PropertyRecord) error {
	if len(records) == 0 {
		return ErrNothingToWrite
	}

	var buf bytes.Buffer
	if err := encodeCSV(&buf, records); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return u.Upload(ctx, exportKey(u.prefix, u.now()), bytes.NewReader(buf.Bytes()), "text/csv")
}

func exportKey(prefix string, t time.Time) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%smalawi_properties_%s.csv", prefix, t.UTC().Format("20060102T150405Z"))
}
