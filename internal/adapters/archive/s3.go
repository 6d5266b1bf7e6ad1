package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrBucketRequired is returned by NewS3 without a bucket.
var ErrBucketRequired = errors.New("s3 bucket required")

const defaultRegion = "us-east-1"

// S3Config configures the S3 archiver. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible stores such as MinIO
	PathStyle       bool
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Archiver uploads reports to a single bucket.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// Compile-time check that *S3Archiver satisfies Archiver.
var _ Archiver = (*S3Archiver)(nil)

// NewS3 builds an S3 client from cfg.
// PRE: cfg.Bucket is non-empty
func NewS3(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible stores often reject the streaming checksum trailer.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})
	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (a *S3Archiver) objectKey(key string) string {
	if a.prefix == "" {
		return key
	}
	return a.prefix + "/" + key
}

// Archive uploads body and returns an s3:// location.
func (a *S3Archiver) Archive(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	objectKey := a.objectKey(key)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, objectKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, objectKey), nil
}

// Enabled reports true.
func (a *S3Archiver) Enabled() bool { return true }
