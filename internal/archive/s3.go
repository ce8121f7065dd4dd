package archive

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"healthreport/internal/config"
	"healthreport/internal/model"
)

type S3Archive struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewS3(cfg config.ArchiveConfig) (*S3Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return &S3Archive{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (a *S3Archive) Upload(ctx context.Context, r model.Report) error {
	if a == nil || a.client == nil {
		return fmt.Errorf("s3 client not initialized")
	}
	reader := strings.NewReader(r.Text)
	_, err := a.client.PutObject(ctx, a.bucket, ObjectKey(a.prefix, r), reader, reader.Size(), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"run-id": r.RunID,
			"source": path.Base(r.Source),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// ObjectKey lays reports out by UTC date: <prefix>2024/01/15/<run id>.txt
func ObjectKey(prefix string, r model.Report) string {
	day := r.GeneratedAt.UTC().Format("2006/01/02")
	return path.Join(prefix, day, r.RunID+".txt")
}
