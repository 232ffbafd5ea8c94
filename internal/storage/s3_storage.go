package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"greendrake/propdesk/internal/config"
)

// StoredObject is the result of a successful upload.
type StoredObject struct {
	Key string
	URL string
}

// IObjectStore defines the interface for image blob storage.
type IObjectStore interface {
	// Put writes content under a key partitioned by owner and property.
	// index is the position of the file within its upload batch.
	Put(ctx context.Context, ownerID, propertyID string, index int, filename string, content io.Reader, size int64, contentType string) (*StoredObject, error)
}

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Storage implements IObjectStore.
type s3Storage struct {
	cfg      *config.Config
	s3Client PutObjectAPI
	now      func() time.Time
}

// NewS3Client builds an S3 client from config. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithRegion(cfg.AwsRegion),
	}
	if cfg.AwsAccessKeyID != "" && cfg.AwsSecretAccessKey != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AwsS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AwsS3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Storage creates a new S3-backed object store.
func NewS3Storage(cfg *config.Config, client PutObjectAPI) IObjectStore {
	return &s3Storage{
		cfg:      cfg,
		s3Client: client,
		now:      time.Now,
	}
}

// ImageKey builds {ownerID}/{propertyID}/images/{unixMillis}-{index}{ext}.
// The index keeps keys unique when several files share a timestamp.
func ImageKey(ownerID, propertyID string, at time.Time, index int, filename string) string {
	return fmt.Sprintf("%s/%s/images/%d-%d%s", ownerID, propertyID, at.UnixMilli(), index, filepath.Ext(filename))
}

// PublicURL returns the URL under which key is served. Each key segment is
// path-escaped; the separating slashes are kept.
func PublicURL(cfg *config.Config, key string) string {
	if cfg.S3PublicBaseURL != "" {
		return strings.TrimRight(cfg.S3PublicBaseURL, "/") + "/" + escapeKey(key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.AwsS3Bucket, cfg.AwsRegion, escapeKey(key))
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Put uploads one blob and returns its key and public URL.
func (s *s3Storage) Put(ctx context.Context, ownerID, propertyID string, index int, filename string, content io.Reader, size int64, contentType string) (*StoredObject, error) {
	key := ImageKey(ownerID, propertyID, s.now(), index, filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AwsS3Bucket),
		Key:           aws.String(key),
		Body:          content,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.cfg.S3ObjectACL != "" {
		input.ACL = types.ObjectCannedACL(s.cfg.S3ObjectACL)
	}

	if _, err := s.s3Client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	slog.DebugContext(ctx, "uploaded object", "key", key, "size", size)
	return &StoredObject{Key: key, URL: PublicURL(s.cfg, key)}, nil
}
