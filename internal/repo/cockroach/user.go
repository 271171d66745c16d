package cockroach

import (
	"database/sql"
	"errors"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	"github.com/jmoiron/sqlx"
)

type User struct {
	db *sqlx.DB
}

func NewUser(db *sqlx.DB) repo.User {
	return &User{db: db}
}

func (u *User) UpsertUser(user *entity.DashboardUser) error {
	// При повторном входе обновляем только username и время входа:
	// уровень доступа выдаётся вручную и не должен сбрасываться
	query := `
		INSERT INTO dashboard_user (user_id, username, permission_level, last_login_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET username = $2, last_login_at = now()
	`
	_, err := u.db.Exec(query, user.UserID, user.Username, user.PermissionLevel)
	return err
}

func (u *User) GetUser(userID string) (*entity.DashboardUser, error) {
	user := &entity.DashboardUser{}
	query := `SELECT user_id, username, permission_level, created_at, last_login_at FROM dashboard_user WHERE user_id = $1`
	err := u.db.Get(user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
