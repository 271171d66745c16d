package usecase

import (
	"context"

	"audiodb-backend/internal/entity"
)

type Request interface {
	// GetRequests возвращает ожидающие заявки с подписанными ссылками на файлы
	GetRequests(ctx context.Context) ([]*entity.Request, error)
	// Accept публикует аудио на платформе через один из бот-аккаунтов,
	// сохраняет запись о загрузке и удаляет заявку. Возвращает ID ассета.
	Accept(ctx context.Context, requestID string) (int64, error)
	// Reject удаляет заявку и уведомляет автора; причина опциональна
	Reject(ctx context.Context, requestID string, reason string) error
}
