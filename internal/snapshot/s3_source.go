package snapshot

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures an object-store snapshot source
type S3Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	UseSSL          bool
}

// S3Source reads snapshot documents stored as .json objects in a bucket
type S3Source struct {
	client *minio.Client
	bucket string
	prefix string
	loc    *time.Location
}

// NewS3Source creates a source backed by an S3-compatible object store
func NewS3Source(opts S3Options, loc *time.Location) (*S3Source, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &S3Source{client: client, bucket: opts.Bucket, prefix: opts.Prefix, loc: loc}, nil
}

// List returns the snapshot objects under the prefix sorted by their embedded timestamp
func (s *S3Source) List(ctx context.Context) ([]Entry, error) {
	return listObjects(ctx, func(ctx context.Context) <-chan minio.ObjectInfo {
		return s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    s.prefix,
			Recursive: true,
		})
	}, s.bucket, s.loc)
}

// listObjects drains a listing. The listing context is cancelled on return so
// the lister stops when the loop bails out early.
func listObjects(
	ctx context.Context,
	list func(context.Context) <-chan minio.ObjectInfo,
	bucket string,
	loc *time.Location,
) ([]Entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var entries []Entry
	for obj := range list(ctx) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", bucket, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		stamp, err := ParseStamp(path.Base(obj.Key), loc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: obj.Key, Stamp: stamp})
	}
	sortEntries(entries)
	return entries, nil
}

// Open streams a snapshot object
func (s *S3Source) Open(ctx context.Context, e Entry) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, e.Name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", e.Name, err)
	}
	return obj, nil
}
