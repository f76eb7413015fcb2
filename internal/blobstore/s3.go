package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is the subset of the S3 API the blob store uses. Narrowed for
// testability with mocks.
type S3Client interface {
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// S3Store persists the blob as a single S3 object.
type S3Store struct {
	client S3Client
	bucket string
	key    string
}

// S3Config carries the settings needed to reach the gallery bucket.
type S3Config struct {
	Bucket      string
	Key         string
	Region      string
	AccessKeyID string // optional; default AWS credential chain applies when empty
	SecretKey   string
	Endpoint    string // optional custom endpoint for S3-compatible services
}

// S3Option customizes S3Store construction.
type S3Option func(*S3Store)

// WithS3Client injects a pre-configured client, primarily for tests.
func WithS3Client(client S3Client) S3Option {
	return func(s *S3Store) { s.client = client }
}

// NewS3Store creates an S3-backed blob store for one bucket/key pair.
func NewS3Store(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("s3 bucket and key must be provided")
	}

	store := &S3Store{bucket: cfg.Bucket, key: cfg.Key}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{}
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			slog.Error("S3Store failed to load AWS config", "error", err)
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		store.client = s3aws.NewFromConfig(awsCfg, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	}

	slog.Debug("S3Store initialized", "bucket", cfg.Bucket, "key", cfg.Key)
	return store, nil
}

// Read downloads the blob, returning (nil, nil) when the object is absent.
func (s *S3Store) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			slog.Debug("S3Store Read: object not present", "bucket", s.bucket, "key", s.key)
			return nil, nil
		}
		slog.Error("S3Store Read failed", "error", err, "bucket", s.bucket, "key", s.key)
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		slog.Error("S3Store Read body failed", "error", err, "bucket", s.bucket, "key", s.key)
		return nil, fmt.Errorf("failed to read s3 object body: %w", err)
	}
	return data, nil
}

// Write replaces the blob object.
func (s *S3Store) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		slog.Error("S3Store Write failed", "error", err, "bucket", s.bucket, "key", s.key)
		return fmt.Errorf("failed to write s3://%s/%s: %w", s.bucket, s.key, err)
	}
	slog.Debug("S3Store Write succeeded", "bucket", s.bucket, "key", s.key, "bytes", len(data))
	return nil
}
