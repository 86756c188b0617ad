package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is a Store backed by an S3-compatible object store. Payloads
// are keyed "<runID>/<name>" inside one bucket, which gives runs the required
// namespace isolation and lets artifacts outlive the engine process when a
// run is retained.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// ObjectStoreConfig carries the connection settings for an S3-compatible
// endpoint.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseTLS    bool
}

// NewObjectStore connects to the configured endpoint.
func NewObjectStore(cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// NewObjectStoreWithClient wraps an existing client, primarily for tests.
func NewObjectStoreWithClient(client *minio.Client, bucket string) (*ObjectStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &ObjectStore{client: client, bucket: bucket}, nil
}

func objectKey(runID, name string) string {
	return runID + "/" + name
}

// Put implements Store. The conflict check is a Stat before the write; the
// store is the only writer for a run, so the window between the two calls is
// covered by the scheduler's once-per-(run,name) production guarantee.
func (s *ObjectStore) Put(ctx context.Context, runID, name, producer string, r io.Reader) (Ref, error) {
	key := objectKey(runID, name)
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return Ref{}, fmt.Errorf("artifact %q in run %s: %w", name, runID, ErrConflict)
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return Ref{}, fmt.Errorf("checking artifact %q in run %s: %w", name, runID, err)
	}

	// Payloads are step outputs already held in memory, so the exact size is
	// cheap to know and keeps the upload a single put instead of a multipart
	// stream.
	data, err := io.ReadAll(r)
	if err != nil {
		return Ref{}, fmt.Errorf("reading artifact %q payload: %w", name, err)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/octet-stream",
		UserMetadata: map[string]string{"Producer": producer},
	})
	if err != nil {
		return Ref{}, fmt.Errorf("storing artifact %q in run %s: %w", name, runID, err)
	}
	return Ref{
		Name:     name,
		Producer: producer,
		Size:     info.Size,
		Location: "s3://" + s.bucket + "/" + key,
	}, nil
}

// Get implements Store.
func (s *ObjectStore) Get(ctx context.Context, runID, name string) (io.ReadCloser, error) {
	key := objectKey(runID, name)
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("artifact %q in run %s: %w", name, runID, ErrNotFound)
		}
		return nil, fmt.Errorf("checking artifact %q in run %s: %w", name, runID, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching artifact %q in run %s: %w", name, runID, err)
	}
	return obj, nil
}

// Manifest implements Store. Object listings come back in key order rather
// than production order.
func (s *ObjectStore) Manifest(ctx context.Context, runID string) ([]Ref, error) {
	var refs []Ref
	prefix := runID + "/"
	// WithMetadata is required for the listing to carry user metadata; the
	// producer would otherwise come back empty.
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("listing artifacts for run %s: %w", runID, info.Err)
		}
		refs = append(refs, Ref{
			Name:     info.Key[len(prefix):],
			Producer: info.UserMetadata["X-Amz-Meta-Producer"],
			Size:     info.Size,
			Location: "s3://" + s.bucket + "/" + info.Key,
		})
	}
	return refs, nil
}
