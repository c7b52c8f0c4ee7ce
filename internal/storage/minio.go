package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/config"
	"github.com/aihub/rag-qa-go/internal/logger"
)

// BatchArchiver 将上传的批次文件归档到MinIO
// 归档不属于索引契约，失败只记日志，由调用方决定是否继续
type BatchArchiver struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewBatchArchiver 创建批次归档器
func NewBatchArchiver(cfg config.ObjectStorageConfig) (*BatchArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &BatchArchiver{
		client: client,
		bucket: cfg.Bucket,
		log:    logger.Named("storage"),
	}, nil
}

// EnsureBucket 确保归档bucket存在
func (a *BatchArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	a.log.Info("Archive bucket created", zap.String("bucket", a.bucket))
	return nil
}

// Archive 按日期前缀保存一份批次文件
func (a *BatchArchiver) Archive(ctx context.Context, filename string, data []byte) error {
	objectName := path.Join(time.Now().UTC().Format("2006/01/02"), filename)

	_, err := a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to archive batch file: %w", err)
	}

	a.log.Info("Batch file archived", zap.String("object", objectName), zap.Int("bytes", len(data)))
	return nil
}
