package library

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/psytech/suvichar/internal/config"
)

const keyPrefix = "cards/"

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Library uploads images to a bucket.
type S3Library struct {
	client  objectPutter
	bucket  string
	sources Sources
}

// NewS3Library builds a library from S3 settings. Static credentials are
// used when both keys are set; otherwise the default AWS chain applies. A
// custom endpoint switches to path-style addressing for MinIO and friends.
func NewS3Library(ctx context.Context, cfg config.S3, sources Sources) (*S3Library, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Library{client: client, bucket: cfg.Bucket, sources: sources}, nil
}

// Save uploads the image and returns an s3://bucket/key reference.
func (l *S3Library) Save(ctx context.Context, ref string) (string, error) {
	src, err := l.sources.Resolve(ref)
	if err != nil {
		return "", err
	}
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer f.Close()

	key := keyPrefix + objectName(src)
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := l.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(l.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrSaveFailed, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", l.bucket, key), nil
}

// Open builds the library selected by cfg.LibraryDriver. Both drivers only
// read images from cfg.ExportDir.
func Open(ctx context.Context, cfg config.Config) (Library, error) {
	sources, err := NewSources(cfg.ExportDir)
	if err != nil {
		return nil, err
	}
	switch cfg.LibraryDriver {
	case config.LibraryS3:
		return NewS3Library(ctx, cfg.S3, sources)
	case config.LibraryLocal, "":
		return NewLocalLibrary(cfg.LibraryDir, sources)
	default:
		return nil, fmt.Errorf("unknown library driver %q", cfg.LibraryDriver)
	}
}
