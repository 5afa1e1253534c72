package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/config"
)

// AttachmentStore keeps chat attachments in an S3-compatible bucket. Objects
// are keyed by group so a group's attachments share a prefix.
type AttachmentStore struct {
	client *minio.Client
	bucket string
}

// NewAttachmentStore connects to MinIO and ensures the bucket exists. Returns
// an error when the endpoint is not configured, so callers can treat
// attachment storage as optional.
func NewAttachmentStore(cfg config.MinIOConfig) (*AttachmentStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	st := &AttachmentStore{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, st.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, xerr := mc.BucketExists(ctx, st.bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("ensure bucket %s: %w", st.bucket, err)
		}
	}
	return st, nil
}

// Put stores one attachment and returns its object key. The key embeds a
// fresh id so identical filenames never collide.
func (s *AttachmentStore) Put(ctx context.Context, groupID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := path.Join(groupID, primitive.NewObjectID().Hex(), filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put attachment: %w", err)
	}
	return key, nil
}

// PresignedURL returns a time-limited download URL for the object key.
func (s *AttachmentStore) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return u.String(), nil
}
