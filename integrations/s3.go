package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/chxlky/trello-report/internal/config"
	"github.com/chxlky/trello-report/internal/output"
	"github.com/chxlky/trello-report/internal/report"
)

// S3API is the part of *s3.Client the sink uses.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client initializes an S3 client using the provided configuration.
// An empty endpoint uses AWS itself; anything else (MinIO and other
// S3-compatible services) is used as the base endpoint.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid S3 endpoint: %w", err)
		}
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// S3Sink uploads each report as an object under
// <prefix>/<generated timestamp>/<file name>.
type S3Sink struct {
	Client S3API
	Bucket string
	Prefix string
	Naming output.Naming
}

func (s *S3Sink) Name() string {
	return "s3"
}

func (s *S3Sink) EnsureBucketExists(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.Bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return fmt.Errorf("bucket %s does not exist", s.Bucket)
		}
		return fmt.Errorf("error checking bucket: %w", err)
	}
	return nil
}

func (s *S3Sink) Key(set *report.Set, r report.Report) string {
	return path.Join(strings.Trim(s.Prefix, "/"), set.GeneratedAt.UTC().Format("20060102T150405Z"), s.Naming.FileName(r))
}

func (s *S3Sink) Publish(ctx context.Context, set *report.Set) error {
	for _, r := range set.All() {
		key := s.Key(set, r)
		_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.Bucket),
			Key:         aws.String(key),
			Body:        strings.NewReader(r.Body),
			ContentType: aws.String("text/plain; charset=utf-8"),
		})
		if err != nil {
			return fmt.Errorf("error saving %s to S3: %w", key, err)
		}
	}
	return nil
}
