package repo

import (
	"errors"

	"audiodb-backend/internal/entity"
)

type User interface {
	// UpsertUser создаёт пользователя при первом входе либо обновляет
	// username и время последнего входа. Уровень доступа при обновлении не трогается.
	UpsertUser(user *entity.DashboardUser) error
	// GetUser возвращает пользователя по его Discord ID
	GetUser(userID string) (*entity.DashboardUser, error)
}

var ErrUserNotFound = errors.New("user not found")
