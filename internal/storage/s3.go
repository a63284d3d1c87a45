package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"go-expense-tracker/internal/config"
	"go-expense-tracker/internal/util"
)

type S3Store struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	publicBase string
	maxBytes   int64
}

func newS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Store{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.S3Bucket,
		publicBase: cfg.S3PublicBase,
		maxBytes:   cfg.MaxUploadSize,
	}, nil
}

func (s *S3Store) Driver() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, data []byte, meta PutMeta) (PutResult, error) {
	if err := checkSize(data, s.maxBytes, meta.OriginalName); err != nil {
		return PutResult{}, err
	}

	key := buildKey(meta)
	sum := checksum(data)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(meta.MimeType),
		Metadata: map[string]string{
			"original-name":   util.SanitizeFilename(meta.OriginalName),
			"checksum-sha256": sum,
		},
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("put object: %w", err)
	}

	result := PutResult{Key: key, Bucket: s.bucket, ChecksumSHA256: sum}
	if s.publicBase != "" {
		result.URL = s.publicBase + "/" + key
	}
	return result, nil
}

func (s *S3Store) Delete(ctx context.Context, bucket string, key string) error {
	if bucket == "" {
		bucket = s.bucket
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Store) LocalPath(_ string) (string, error) {
	return "", fmt.Errorf("local paths are not supported by the s3 driver")
}

func (s *S3Store) PresignGet(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}
