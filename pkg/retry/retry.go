package retry

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

// Do выполняет операцию с экспоненциальной задержкой между попытками.
// Возвращает nil, если операция успешна, или последнюю ошибку, если все
// попытки завершились неудачей.
// При maxRetries = 6, initialDelay = 100ms задержки: 100ms, 200ms, 400ms,
// 800ms, 1600ms, 3200ms, потом завершение.
func Do(maxRetries int, initialDelay time.Duration, operation func() error) error {
	return DoWithContext(context.Background(), maxRetries, initialDelay, operation)
}

// DoWithContext — то же, что Do, но прерывает ожидание при отмене контекста.
func DoWithContext(ctx context.Context, maxRetries int, initialDelay time.Duration, operation func() error) error {
	delay := initialDelay
	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		log.Errorf("error during retry %d: %v", attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
