package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hidaya/internal/config"
	"hidaya/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive keeps a copy of content removed by moderation.
type Archive interface {
	ArchiveRemoved(ctx context.Context, flag *models.Flag, content any) (string, error)
}

type Snapshot struct {
	Flag       *models.Flag `json:"flag"`
	Content    any          `json:"content"`
	ArchivedAt time.Time    `json:"archivedAt"`
}

type MinIOClient struct {
	client *minio.Client
	bucket string
	region string
	now    func() time.Time
}

var _ Archive = (*MinIOClient)(nil)

func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating MinIO client: %w", err)
	}

	m := &MinIOClient{
		client: client,
		bucket: cfg.BucketName,
		region: cfg.Region,
		now:    time.Now,
	}

	if err := m.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("error creating bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIOClient) ArchiveRemoved(ctx context.Context, flag *models.Flag, content any) (string, error) {
	now := m.now().UTC()

	body, err := EncodeSnapshot(flag, content, now)
	if err != nil {
		return "", err
	}

	name := ObjectName(flag)
	_, err = m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{
			ContentType: "application/json",
			UserMetadata: map[string]string{
				"flag-id":     flag.FlagID,
				"item-type":   string(flag.ItemType),
				"reported-by": flag.ReportedBy,
				"archived-at": now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("error uploading to MinIO: %w", err)
	}

	return name, nil
}

func ObjectName(flag *models.Flag) string {
	return fmt.Sprintf("flags/%s/%s-%s.json", flag.FlagID, flag.ItemType, flag.ItemID)
}

func EncodeSnapshot(flag *models.Flag, content any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Snapshot{Flag: flag, Content: content, ArchivedAt: at})
	if err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}
	return body, nil
}
