package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Sink stores a finished export file and returns where it went.
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Type() string
}

type fileSink struct {
	dir string
}

// NewFileSink stores exports in dir, creating it on first use.
func NewFileSink(dir string) Sink {
	return &fileSink{dir: dir}
}

// Put writes to a temporary file first so readers never see a partial export.
func (s *fileSink) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o775); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	dst := filepath.Join(s.dir, name)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o664); err != nil {
		return "", fmt.Errorf("export: write file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("export: rename file: %w", err)
	}
	return dst, nil
}

func (s *fileSink) Type() string { return "file" }

// MinioOpts configures the object storage sink.
type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	prefix          string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

type minioSink struct {
	cfg    *minioConfig
	client *minio.Client
}

// NewMinioSink creates a sink that uploads exports into a bucket.
func NewMinioSink(opts ...MinioOpts) (Sink, error) {
	cfg := &minioConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.endpoint == "" || cfg.bucket == "" {
		return nil, fmt.Errorf("export: minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("export: minio client: %w", err)
	}
	return &minioSink{cfg: cfg, client: client}, nil
}

func (s *minioSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.cfg.prefix, name)
	_, err := s.client.PutObject(ctx, s.cfg.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("export: upload %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.bucket, key), nil
}

func (s *minioSink) Type() string { return "minio" }

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithPrefix(prefix string) MinioOpts {
	return func(c *minioConfig) {
		c.prefix = prefix
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
