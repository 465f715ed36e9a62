package certificate

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bloodlink/internal/platform/config"
)

// NewUploader picks the backend named in cfg.Backend.
func NewUploader(ctx context.Context, cfg config.Storage) (Uploader, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Uploader(ctx, cfg)
	case "gcs":
		return NewGCSUploader(ctx, cfg)
	case "", "memory":
		return NewMemoryUploader(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown certificate storage backend %q", cfg.Backend)
	}
}

// S3Uploader stores objects in S3 or an S3-compatible service such as MinIO.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Uploader(ctx context.Context, cfg config.Storage) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put failed: %w", err)
	}
	return joinURL(u.baseURL, key), nil
}

// GCSUploader stores objects in Google Cloud Storage using application
// default credentials.
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSUploader(ctx context.Context, cfg config.Storage) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSUploader{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close failed: %w", err)
	}
	return joinURL(u.baseURL, key), nil
}

// MemoryUploader keeps objects in process memory.
type MemoryUploader struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryUploader(baseURL string) *MemoryUploader {
	if baseURL == "" {
		baseURL = "memory://certificates"
	}
	return &MemoryUploader{objects: make(map[string][]byte), baseURL: baseURL}
}

func (u *MemoryUploader) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = append([]byte(nil), data...)
	return joinURL(u.baseURL, key), nil
}

// Object returns a stored object.
func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	data, ok := u.objects[key]
	return data, ok
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
