// Package gcs writes objects to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

type Bucket struct {
	client *storage.Client
	name   string
}

func NewBucket(client *storage.Client, name string) *Bucket {
	return &Bucket{client: client, name: name}
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Write(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	return helpers.UploadObject(ctx, b.client, b.name, objectPath, contentType, body)
}
