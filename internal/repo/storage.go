package repo

import (
	"context"
	"time"
)

// BlobStorage — объектное хранилище файлов заявок.
type BlobStorage interface {
	// Upload сохраняет объект и возвращает полный путь (bucket/path)
	Upload(ctx context.Context, path string, raw []byte, contentType string) (string, error)
	// Download возвращает содержимое объекта
	Download(ctx context.Context, path string) ([]byte, error)
	// Delete удаляет объект
	Delete(ctx context.Context, path string) error
	// PresignedURL возвращает временную подписанную ссылку на объект
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
