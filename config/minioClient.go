package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	MinioClient *minio.Client
	MinioBucket string
)

// ConnectMinio initializes the object-storage client used for budget
// attachments. Uploads are disabled when MINIO_ENDPOINT is not configured;
// the metadata-only document endpoint keeps working either way.
func ConnectMinio() error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		log.Println("MINIO_ENDPOINT not set, budget document uploads disabled")
		return nil
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return err
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "budget-documents"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	MinioClient = mc
	MinioBucket = bucket
	log.Println("Connected to MinIO")
	return nil
}
