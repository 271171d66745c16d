package entity

import "time"

// Уровни доступа к маршрутам дашборда.
const (
	PermissionUpload    = 0 // загрузка заявок
	PermissionModerator = 1 // просмотр и модерация заявок
	PermissionAdmin     = 2 // редактирование вайтлиста
)

// DashboardUser — пользователь дашборда, авторизованный через Discord OAuth.
type DashboardUser struct {
	UserID          string    `json:"user_id" db:"user_id"`
	Username        string    `json:"username" db:"username"`
	PermissionLevel int       `json:"permission_level" db:"permission_level"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	LastLoginAt     time.Time `json:"last_login_at" db:"last_login_at"`
}
