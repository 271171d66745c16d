package repo

import (
	"context"

	"audiodb-backend/internal/entity"
)

// NotificationEventRepository — шина уведомлений между сайтом и ботом.
// Доставка at-most-once: Publish не ждёт подтверждения получателя,
// подписчики, подключившиеся позже, пропущенные события не получают.
type NotificationEventRepository interface {
	PublishNotificationEvent(ctx context.Context, event *entity.NotificationEvent) error
	SubscribeNotificationEvents(ctx context.Context) (<-chan *entity.NotificationEvent, error)
}
