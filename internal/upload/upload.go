// Package upload stores report photos on local disk or S3-compatible
// object storage.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxSize is the largest accepted photo (5MB).
const MaxSize = 5 * 1024 * 1024

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var (
	ErrTooLarge    = errors.New("file too large, maximum size is 5MB")
	ErrInvalidType = errors.New("invalid file type, only JPEG, PNG, and WebP are allowed")
)

// Validate checks the declared content type and size against the photo rules.
func Validate(contentType string, size int64) error {
	if size > MaxSize {
		return ErrTooLarge
	}
	if _, ok := allowedTypes[strings.ToLower(contentType)]; !ok {
		return ErrInvalidType
	}
	return nil
}

// S3Config configures the optional object-storage backend.
type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	PublicURL string
}

// Config selects the storage backend. When S3 is fully configured it wins;
// otherwise photos land in Dir and are served from /uploads/.
type Config struct {
	Dir string
	S3  S3Config
}

// Service stores validated photos and returns their public URL.
type Service struct {
	cfg    Config
	client *s3.Client
}

func NewService(cfg Config) *Service {
	svc := &Service{cfg: cfg}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		svc.client = newS3Client(cfg.S3)
	}
	return svc
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Store writes the photo and returns its public URL. Filenames are
// {userID}_{unixnano}{ext} so uploads never collide.
func (s *Service) Store(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if err := Validate(contentType, int64(len(data))); err != nil {
		return "", err
	}

	ext := allowedTypes[strings.ToLower(contentType)]
	filename := fmt.Sprintf("%s_%d%s", userID, time.Now().UnixNano(), ext)

	if s.client != nil {
		return s.storeS3(ctx, filename, contentType, data)
	}
	return s.storeLocal(filename, data)
}

func (s *Service) storeLocal(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.cfg.Dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return "/uploads/" + filename, nil
}

func (s *Service) storeS3(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := path.Join("photos", filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	base := strings.TrimSuffix(s.cfg.S3.PublicURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.S3.Bucket, s.cfg.S3.Region)
	}
	return base + "/" + key, nil
}
