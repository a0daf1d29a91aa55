// Package storage archives raw webhook payloads to S3-compatible object
// storage for replay and audit.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	syncapp "github.com/storesync/backend/internal/application/storesync"
	"github.com/storesync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ syncapp.PayloadArchive = (*S3PayloadArchive)(nil)

// S3PayloadArchive writes each payload as one object keyed by source,
// category, day and a random id. Works against AWS S3, MinIO or LocalStack.
type S3PayloadArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
	newID  func() string
}

// S3PayloadArchiveOption configures S3PayloadArchive.
type S3PayloadArchiveOption func(*S3PayloadArchive)

// WithLogger sets the archive logger.
func WithLogger(logger *zap.Logger) S3PayloadArchiveOption {
	return func(a *S3PayloadArchive) {
		a.logger = logger
	}
}

// WithClient replaces the S3 client built from configuration.
func WithClient(client *s3.Client) S3PayloadArchiveOption {
	return func(a *S3PayloadArchive) {
		a.client = client
	}
}

// NewS3PayloadArchive builds an archive from configuration. Static
// credentials are used when both key and secret are set; otherwise the
// default AWS credential chain applies.
func NewS3PayloadArchive(ctx context.Context, cfg config.ArchiveConfig, opts ...S3PayloadArchiveOption) (*S3PayloadArchive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket is required")
	}

	a := &S3PayloadArchive{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client != nil {
		return a, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	a.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return a, nil
}

// Archive stores p and returns the object key.
func (a *S3PayloadArchive) Archive(ctx context.Context, p syncapp.ArchivedPayload) (string, error) {
	key := a.objectKey(p)

	metadata := map[string]string{
		"source":   p.Source,
		"category": p.Category,
	}
	if p.DeliveryID != "" {
		metadata["delivery-id"] = p.DeliveryID
	}
	if p.StoreRef != "" {
		metadata["store-ref"] = p.StoreRef
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(p.Body),
		ContentType: aws.String("application/json"),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive payload: %w", err)
	}

	a.logger.Debug("webhook payload archived", zap.String("key", key), zap.Int("bytes", len(p.Body)))
	return key, nil
}

func (a *S3PayloadArchive) objectKey(p syncapp.ArchivedPayload) string {
	day := p.ReceivedAt.UTC().Format("2006/01/02")
	name := a.newID() + ".json"
	return path.Join(a.prefix, p.Source, p.Category, day, name)
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *S3PayloadArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the target bucket name.
func (a *S3PayloadArchive) Bucket() string {
	return a.bucket
}
