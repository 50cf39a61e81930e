package artifact

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// MinIOStore keeps artifact blobs in an S3-compatible bucket, one object
// per artifact name.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs a blob store over the given client and bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

func (s *MinIOStore) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, name, r, size, opts); err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

func (s *MinIOStore) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	// GetObject defers errors to the first read; stat first so a missing
	// object surfaces as a typed not-found.
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	return obj, nil
}

func (s *MinIOStore) Delete(ctx context.Context, name string) error {
	// RemoveObject on a missing key already succeeds, matching the
	// delete-is-a-no-op contract.
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
