package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// StorageBucket wraps the firebase storage bucket holding user-uploaded media
// (avatars, covers, post images and audio). Clients upload directly and send
// the blob name; the server only verifies the blob exists before persisting a
// reference to it.
type StorageBucket struct {
	*storage.BucketHandle
	bucketName string
}

func NewStorageBucket(ctx context.Context, app *firebase.App, bucketName string) (*StorageBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucketHandle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &StorageBucket{
		bucketHandle,
		bucketName,
	}, nil
}

func (sb *StorageBucket) Exists(ctx context.Context, blobName string) (bool, error) {
	if len(blobName) == 0 {
		return false, nil
	}
	handle := sb.Object(blobName)
	if _, err := handle.Attrs(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL returns the serving URL for a blob in the bucket.
func (sb *StorageBucket) PublicURL(blobName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%v/%v", sb.bucketName, blobName)
}
