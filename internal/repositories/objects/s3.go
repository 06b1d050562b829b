package objects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the repository uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// s3Repo implements Repository on an S3 compatible bucket (AWS S3, Cloudflare R2)
type s3Repo struct {
	client S3API
	bucket string
}

// S3RepoConfig holds configuration for the S3 repository
type S3RepoConfig struct {
	Client S3API
	Bucket string
}

// NewS3Repository creates a new S3-backed object repository
func NewS3Repository(cfg *S3RepoConfig) Repository {
	if cfg == nil {
		panic("S3RepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("S3 client cannot be nil")
	}
	if cfg.Bucket == "" {
		panic("S3 bucket cannot be empty")
	}

	return &s3Repo{
		client: cfg.Client,
		bucket: cfg.Bucket,
	}
}

// S3Options describes how to reach the bucket
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional, set for R2 or other S3 compatible stores
	AccessKeyID     string // Optional, the default credential chain is used when empty
	SecretAccessKey string
}

// NewS3 loads AWS configuration and creates an S3-backed object repository
func NewS3(ctx context.Context, opts S3Options) (Repository, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Repository(&S3RepoConfig{
		Client: client,
		Bucket: opts.Bucket,
	}), nil
}

// Put uploads the object
func (r *s3Repo) Put(ctx context.Context, obj *Object) error {
	if err := validateObject(obj); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(obj.Key),
		Body:   bytes.NewReader(obj.Data),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s: %w", obj.Key, err)
	}
	return nil
}

// Get downloads an object
func (r *s3Repo) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return &Object{
		Key:         key,
		ContentType: aws.ToString(out.ContentType),
		Data:        data,
		UpdatedAt:   aws.ToTime(out.LastModified),
	}, nil
}

// Delete removes an object. S3 deletes are idempotent so existence is checked first.
func (r *s3Repo) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isMissing(err) {
			return notFound(key)
		}
		return fmt.Errorf("failed to check object %s: %w", key, err)
	}

	if _, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// List pages through every key under prefix
func (r *s3Repo) List(ctx context.Context, prefix string) ([]*Info, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})

	var result []*Info
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			result = append(result, &Info{
				Key:       aws.ToString(o.Key),
				Size:      aws.ToInt64(o.Size),
				UpdatedAt: aws.ToTime(o.LastModified),
			})
		}
	}
	return result, nil
}

func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
