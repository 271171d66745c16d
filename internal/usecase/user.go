package usecase

import "audiodb-backend/internal/entity"

type User interface {
	// LoginUser регистрирует вход пользователя (создаёт его при первом входе)
	// и возвращает актуальный профиль
	LoginUser(userID string, username string) (*entity.DashboardUser, error)
	// GetUser возвращает профиль пользователя дашборда
	GetUser(userID string) (*entity.DashboardUser, error)
}
