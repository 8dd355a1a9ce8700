// Package s3store keeps uploaded content as objects in an S3-compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/patric-chuzhbe/filesmanager/internal/contentstore"
)

// Config describes the bucket and how to reach it.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
}

type objectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store writes one object per blob.
type S3Store struct {
	client    objectClient
	bucket    string
	keyPrefix string
}

// New builds an S3 client from cfg. Static credentials are used when both
// keys are set, the default AWS chain otherwise. A custom endpoint switches
// to path-style addressing for MinIO and Localstack.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	var configOptions []func(*awsConfig.LoadOptions) error
	if cfg.Region != "" {
		configOptions = append(configOptions, awsConfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOptions = append(
			configOptions,
			awsConfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			),
		)
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/contentstore/s3store/s3store.go/New(): error while `awsConfig.LoadDefaultConfig()` calling: %w",
			err,
		)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client objectClient, bucket, keyPrefix string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

// Put uploads data under the prefixed name and returns the object key.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := s.objectKey(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf(
			"in internal/contentstore/s3store/s3store.go/Put(): error while `s.client.PutObject()` calling: %w",
			err,
		)
	}

	return key, nil
}

// Get downloads the object stored under locator.
func (s *S3Store) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", locator, contentstore.ErrContentNotFound)
		}
		return nil, fmt.Errorf(
			"in internal/contentstore/s3store/s3store.go/Get(): error while `s.client.GetObject()` calling: %w",
			err,
		)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

func (s *S3Store) objectKey(name string) string {
	if s.keyPrefix == "" {
		return name
	}

	return path.Join(s.keyPrefix, name)
}
