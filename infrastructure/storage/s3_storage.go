package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region          string
	Bucket          string // default bucket for bare keys
	Endpoint        string // S3-compatible endpoint; switches to path-style addressing
	AccessKeyID     string
	SecretAccessKey string
	HTTPClient      *http.Client
}

type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage creates an S3 reader. Requests are never retried. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func NewS3Storage(ctx context.Context, config S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}
	if config.HTTPClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(config.HTTPClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, bucket: config.Bucket}, nil
}

func (s *S3Storage) Driver() string {
	return DriverS3
}

func (s *S3Storage) GetFileStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	start := time.Now()

	bucket, key, err := ParseS3URI(uri, s.bucket)
	if err != nil {
		observe(DriverS3, uri, start, err)
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		err = fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	observe(DriverS3, uri, start, err)
	if err != nil {
		return nil, err
	}

	return out.Body, nil
}

// ParseS3URI splits "s3://bucket/key" into its parts. Anything without the
// scheme is a key in defaultBucket.
func ParseS3URI(uri, defaultBucket string) (bucket, key string, err error) {
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, _ = strings.Cut(rest, "/")
	} else {
		bucket, key = defaultBucket, strings.TrimPrefix(uri, "/")
	}

	if bucket == "" {
		return "", "", errors.New("no bucket for object " + uri)
	}
	if key == "" {
		return "", "", errors.New("no object key in " + uri)
	}
	return bucket, key, nil
}
