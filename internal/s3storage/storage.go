// Package s3storage stores reference uploads in Cloudflare R2 through its S3
// compatible API.
package s3storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/config"
	"github.com/dharsanguruparan/CreativeBrief/internal/validation"
)

// R2 ignores regions but the S3 signer needs one.
const r2Region = "auto"

// presignTTL is used for object URLs when the bucket has no public base URL.
const presignTTL = 7 * 24 * time.Hour

// File is one candidate upload.
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// Object describes a file that was written to the bucket.
type Object struct {
	Key      string
	URL      string
	Name     string
	Size     int64
	MIMEType string
}

// Storage wraps the MinIO client for the questionnaire bucket.
type Storage struct {
	client     *minio.Client
	bucket     string
	publicBase string
	now        func() time.Time
}

// New creates a MinIO client from the Config. No network call is made.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.R2Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		Secure: cfg.R2UseSSL,
		Region: r2Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{
		client:     client,
		bucket:     cfg.R2Bucket,
		publicBase: cfg.R2PublicBaseURL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Bucket returns the bucket name uploads go to.
func (s *Storage) Bucket() string { return s.bucket }

// EnsureBucket verifies the bucket exists, creating it when missing.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: r2Region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put uploads a single object.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// URL returns a link to key: under the public base when one is configured and
// a presigned GET otherwise.
func (s *Storage) URL(ctx context.Context, key string) (string, error) {
	if s.publicBase != "" {
		return s.publicBase + "/" + key, nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

// UploadBatch validates files against rule and, only when the whole batch is
// acceptable, uploads them under prefix. Validation problems come back as
// user-facing strings with no objects written. A non-nil error is a storage
// fault and its text is meant for operators.
func (s *Storage) UploadBatch(ctx context.Context, files []File, prefix string, rule catalog.ValidationRule) ([]Object, []string, error) {
	infos := make([]validation.FileInfo, len(files))
	for i, f := range files {
		infos[i] = validation.FileInfo{Name: f.Name, Size: f.Size}
	}
	if problems := validation.CheckBatch(infos, rule); len(problems) > 0 {
		return nil, problems, nil
	}
	objects := make([]Object, 0, len(files))
	for _, f := range files {
		mimeType := validation.MIMEType(f.Name)
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		key := ObjectKey(prefix, f.Name, s.now())
		if err := s.Put(ctx, key, f.Body, f.Size, mimeType); err != nil {
			return objects, nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		link, err := s.URL(ctx, key)
		if err != nil {
			return objects, nil, err
		}
		objects = append(objects, Object{
			Key:      key,
			URL:      link,
			Name:     f.Name,
			Size:     f.Size,
			MIMEType: mimeType,
		})
	}
	return objects, nil, nil
}

// ObjectKey builds <prefix>/<timestamp>_<name>. The microsecond timestamp
// keeps repeated uploads of the same filename apart.
func ObjectKey(prefix, name string, at time.Time) string {
	stamp := fmt.Sprintf("%s_%06d", at.Format("20060102_150405"), at.Nanosecond()/1000)
	return fmt.Sprintf("%s/%s_%s", prefix, stamp, path.Base(name))
}
