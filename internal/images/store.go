package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object describes a stored image file.
type Object struct {
	Ref     string
	ModTime time.Time
}

// Store persists profile image bytes under opaque references.
type Store interface {
	Put(ctx context.Context, ref string, data []byte) error
	// Delete removes a stored reference. Deleting an absent reference is a
	// no-op.
	Delete(ctx context.Context, ref string) error
	// List returns every stored object with its last write time. Used by the
	// sweep job only.
	List(ctx context.Context) ([]Object, error)
}

// LocalStore keeps images on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images: create storage dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Path returns the on-disk location for a reference.
func (s *LocalStore) Path(ref string) string {
	return filepath.Join(s.dir, ref)
}

// Put writes the image bytes under ref.
func (s *LocalStore) Put(ctx context.Context, ref string, data []byte) error {
	return os.WriteFile(s.Path(ref), data, 0o644)
}

// Delete removes the file for ref, treating a missing file as success.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := os.Remove(s.Path(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the files currently on disk.
func (s *LocalStore) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var objects []Object
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		objects = append(objects, Object{Ref: entry.Name(), ModTime: info.ModTime()})
	}
	return objects, nil
}

// S3Config carries the settings for an S3-compatible object store.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	KeyPrefix string
	AccessKey string
	SecretKey string
}

// S3Store keeps images in an S3-compatible bucket (MinIO in development).
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store builds the S3 client with static credentials.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("images: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.KeyPrefix}, nil
}

func (s *S3Store) key(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

// Put uploads the image bytes under ref.
func (s *S3Store) Put(ctx context.Context, ref string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes the object for ref. S3 deletes are idempotent already.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	return err
}

// List returns the objects under the configured prefix.
func (s *S3Store) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.prefix != "" {
				key = key[len(s.prefix)+1:]
			}
			objects = append(objects, Object{Ref: key, ModTime: aws.ToTime(obj.LastModified)})
		}
	}
	return objects, nil
}

var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*S3Store)(nil)
)
