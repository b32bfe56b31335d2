package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iliyamo/videotube/internal/config"
)

// S3Storage stores media in a single bucket.  It works against AWS or any
// S3-compatible endpoint (MinIO) via MediaConfig.Endpoint.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Storage builds the client once at startup.  Static credentials are
// used when configured; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg config.MediaConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: bucket not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	base := cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: strings.TrimRight(base, "/")}, nil
}

// objectKey builds a date-partitioned random key so uploads never collide.
func objectKey(kind Kind, ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", kind, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload sends the file at localPath to the bucket and removes the local
// file afterwards regardless of outcome.
func (s *S3Storage) Upload(ctx context.Context, localPath string, kind Kind) (UploadResult, error) {
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return UploadResult{}, err
	}
	defer f.Close()

	ext := filepath.Ext(localPath)
	key := objectKey(kind, ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{URL: s.baseURL + "/" + key, Key: key}, nil
}

// KeyFromURL strips the configured base URL off a durable URL.  Returns ""
// when the URL was not produced by this store.
func (s *S3Storage) KeyFromURL(url string) string {
	if strings.HasPrefix(url, s.baseURL+"/") {
		return strings.TrimPrefix(url, s.baseURL+"/")
	}
	return ""
}

// Delete removes an object by key.  Missing objects are not an error; S3
// delete is idempotent.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
