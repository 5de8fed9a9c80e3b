package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/arloliu/bitplane/errs"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Scheme is the URL scheme routed to Minio.
const S3Scheme = "s3"

// Minio opens TIFF objects from MinIO or any S3-compatible store. Names take
// the form s3://bucket/key.
type Minio struct {
	opener
	client *minio.Client
}

var _ Source = (*Minio)(nil)

// NewMinio creates an object storage source using client.
func NewMinio(client *minio.Client, opts ...Option) (*Minio, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is nil")
	}

	o, err := newOpener(opts)
	if err != nil {
		return nil, err
	}

	return &Minio{opener: o, client: client}, nil
}

// NewMinioClient connects to endpoint with credentials taken from the
// environment (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, then
// MINIO_ROOT_USER/MINIO_ROOT_PASSWORD).
func NewMinioClient(endpoint string, secure bool) (*minio.Client, error) {
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
	})

	return minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
	})
}

// ParseS3URL splits s3://bucket/key into its bucket and key.
func ParseS3URL(name string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(name, S3Scheme+"://")
	if !ok {
		return "", "", fmt.Errorf("%q is not an %s:// URL", name, S3Scheme)
	}

	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%q must name a bucket and a key", name)
	}

	return bucket, key, nil
}

// Open fetches the object named by an s3:// URL and parses its first image.
// Sample data is read with ranged requests as the decoder needs it.
func (m *Minio) Open(ctx context.Context, name string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, key, err := ParseS3URL(name)
	if err != nil {
		return nil, &errs.FileOpenError{Path: name, Err: err}
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &errs.FileOpenError{Path: name, Err: err}
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, &errs.FileOpenError{Path: name, Err: fmt.Errorf("object not found: %w", err)}
		}

		return nil, &errs.FileOpenError{Path: name, Err: err}
	}

	return m.decode(ctx, name, obj, info.Size, obj)
}
