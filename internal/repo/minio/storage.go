package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"audiodb-backend/internal/repo"

	"github.com/minio/minio-go/v7"
)

// Storage хранит файлы заявок в одном бакете.
type Storage struct {
	client *minio.Client
	bucket string
}

func NewStorage(client *minio.Client, bucket string) (repo.BlobStorage, error) {
	// Создаём бакет, предварительно проверив, что его нет
	ctx := context.TODO()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, err
		}
	}
	return &Storage{client: client, bucket: bucket}, nil
}

func (s *Storage) Upload(ctx context.Context, path string, raw []byte, contentType string) (string, error) {
	info, err := s.client.PutObject(
		ctx,
		s.bucket,
		path,
		bytes.NewReader(raw),
		int64(len(raw)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}
	return info.Bucket + "/" + info.Key, nil
}

func (s *Storage) Download(ctx context.Context, path string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = object.Close() }()
	return io.ReadAll(object)
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	return s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
}

func (s *Storage) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, path, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
