package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

// GCS stores every logical bucket as a prefix inside one Cloud Storage
// bucket. Objects are expected to be publicly readable through the bucket's
// IAM policy.
type GCS struct {
	svc    *storagev1.Service
	bucket string
}

func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	svc, err := storagev1.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(storagev1.DevstorageReadWriteScope),
	)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCS{svc: svc, bucket: bucket}, nil
}

func (g *GCS) objectName(bucket, path string) (string, error) {
	p, err := cleanPath(bucket + "/" + path)
	if err != nil {
		return "", err
	}
	return p, nil
}

func (g *GCS) Put(ctx context.Context, bucket, path string, r io.Reader, contentType string) error {
	name, err := g.objectName(bucket, path)
	if err != nil {
		return err
	}
	obj := &storagev1.Object{Name: name, ContentType: contentType}
	_, err = g.svc.Objects.Insert(g.bucket, obj).
		Media(r, googleapi.ContentType(contentType)).
		IfGenerationMatch(0).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("gcs insert %s: %w", name, err)
	}
	return nil
}

func (g *GCS) PublicURL(bucket, path string) string {
	return "https://storage.googleapis.com/" + url.PathEscape(g.bucket) + "/" + escapePath(bucket+"/"+path)
}
