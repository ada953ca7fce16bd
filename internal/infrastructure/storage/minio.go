package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
	"github.com/johnquangdev/meeting-reporter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

// MinIOStore keeps report records in a MinIO / S3 bucket
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL for generating accessible URLs (e.g., https://minio.example.com)
	urlExpiry time.Duration
}

// NewMinIOStore creates a new MinIO-backed store and makes sure the bucket exists
func NewMinIOStore(ctx context.Context, cfg *config.StorageConfig) (*MinIOStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}

	store := &MinIOStore{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		urlExpiry: expiry,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return store, nil
}

func (m *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			// Another writer may have created it in the meantime
			if minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
		}
	}

	return nil
}

// Write uploads data as a single object; PutObject replaces the whole object
func (m *MinIOStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return m.GetFileURL(ctx, key)
}

// Read downloads the object stored at key
func (m *MinIOStore) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.mapError(key, err)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		return nil, m.mapError(key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.mapError(key, err)
	}
	return data, nil
}

func (m *MinIOStore) mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", entities.ErrReportNotFound, key)
	}
	return fmt.Errorf("failed to read report: %w", err)
}

// GetFileURL gets a presigned URL for accessing a file
func (m *MinIOStore) GetFileURL(ctx context.Context, objectName string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, m.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return rewritePublicURL(u, m.publicURL), nil
}

// rewritePublicURL swaps the internal endpoint for publicURL, keeping
// /bucket/object?query. Useful when MinIO sits behind a reverse proxy.
func rewritePublicURL(u *url.URL, publicURL string) string {
	if publicURL == "" {
		return u.String()
	}
	pathAndQuery := u.EscapedPath()
	if u.RawQuery != "" {
		pathAndQuery += "?" + u.RawQuery
	}
	return publicURL + pathAndQuery
}

// ListRecent lists the report objects directly under prefix, newest first
func (m *MinIOStore) ListRecent(ctx context.Context, prefix string, limit int) ([]repositories.ReportObject, error) {
	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix: strings.TrimSuffix(prefix, "/") + "/",
	})

	var objects []repositories.ReportObject
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		if !isReportKey(prefix, object.Key) {
			continue
		}
		objects = append(objects, repositories.ReportObject{
			Key:        object.Key,
			ModifiedAt: object.LastModified,
		})
	}

	sort.Slice(objects, func(i, j int) bool {
		if !objects[i].ModifiedAt.Equal(objects[j].ModifiedAt) {
			return objects[i].ModifiedAt.After(objects[j].ModifiedAt)
		}
		return objects[i].Key < objects[j].Key
	})
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}

	for i := range objects {
		location, err := m.GetFileURL(ctx, objects[i].Key)
		if err != nil {
			return nil, err
		}
		objects[i].Location = location
	}
	return objects, nil
}

// Ping checks that the bucket is reachable
func (m *MinIOStore) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}
