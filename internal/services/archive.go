package services

import (
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wedshare/media-service/internal/media"
	"github.com/wedshare/media-service/internal/storage"
)

// Archiver mirrors stored assets into an S3-compatible bucket for
// off-site backup. The upload directory remains the source of truth;
// a failed mirror is logged and not retried. A nil archiver drops
// enqueues silently.
type Archiver struct {
	client *minio.Client
	bucket string
	store  *storage.Store
	jobs   chan string
}

// NewArchiver builds the MinIO client and ensures the bucket exists.
func NewArchiver(endpoint, accessKey, secretKey, bucket string, useSSL bool, store *storage.Store) (*Archiver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("[ARCHIVE] created bucket: %s", bucket)
	}

	return &Archiver{
		client: client,
		bucket: bucket,
		store:  store,
		jobs:   make(chan string, 256),
	}, nil
}

// Start runs the mirror worker until ctx is cancelled.
func (a *Archiver) Start(ctx context.Context) {
	if a == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case name := <-a.jobs:
				if err := a.mirror(ctx, name); err != nil {
					log.Printf("[ARCHIVE] mirror failed for %s: %v", name, err)
				}
			}
		}
	}()
	log.Printf("[ARCHIVE] mirroring to bucket %s", a.bucket)
}

// Enqueue schedules one asset for mirroring. Non-blocking: if the queue
// is full the asset is skipped with a log line rather than stalling an
// upload response.
func (a *Archiver) Enqueue(storedName string) {
	if a == nil {
		return
	}
	select {
	case a.jobs <- storedName:
	default:
		log.Printf("[ARCHIVE] queue full, skipping %s", storedName)
	}
}

func (a *Archiver) mirror(ctx context.Context, storedName string) error {
	f, err := a.store.Open(storedName)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = a.client.PutObject(ctx, a.bucket, storedName, f, info.Size(), minio.PutObjectOptions{
		ContentType: media.ContentType(media.Ext(storedName)),
	})
	if err != nil {
		return err
	}

	log.Printf("[ARCHIVE] mirrored %s (%d bytes)", storedName, info.Size())
	return nil
}
