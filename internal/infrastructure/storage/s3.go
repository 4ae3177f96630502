// Package storage uploads recipe images to S3-compatible object storage
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Images are immutable once uploaded (every key carries a fresh uuid)
const imageCacheTTL = 7 * 24 * time.Hour

// PutObjectAPI is the part of the S3 client the store needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements outbound.ImageStorage
type S3Store struct {
	client        PutObjectAPI
	bucket        string
	publicBaseURL string
	maxFileSize   int64
	logger        *zap.Logger
}

var _ outbound.ImageStorage = (*S3Store)(nil)

// NewS3Store builds an S3 client from configuration. Static keys are used
// when present, otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3StoreWithClient(client, cfg, logger), nil
}

// NewS3StoreWithClient wires an existing client
func NewS3StoreWithClient(client PutObjectAPI, cfg config.StorageConfig, logger *zap.Logger) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL(cfg),
		maxFileSize:   cfg.MaxFileSize,
		logger:        logger.Named("s3-storage"),
	}
}

// Upload stores data under key and returns its public URL
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return "", fmt.Errorf("object of %d bytes exceeds the %d byte limit", len(data), s.maxFileSize)
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(fmt.Sprintf("public, max-age=%d, immutable", int(imageCacheTTL.Seconds()))),
	})
	if err != nil {
		s.logger.Error("S3 upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.Debug("S3 upload completed",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	return s.publicBaseURL + "/" + escapeKey(key), nil
}

// publicBaseURL resolves where uploaded objects are served from: an explicit
// CDN base, a custom endpoint, or the regional virtual-hosted bucket
func publicBaseURL(cfg config.StorageConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Region != "":
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Disabled is used when no storage provider is configured
type Disabled struct{}

var _ outbound.ImageStorage = Disabled{}

func (Disabled) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", outbound.ErrNotConfigured
}
