package service

import (
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"
)

type User struct {
	userRepo repo.User
}

func NewUser(userRepo repo.User) usecase.User {
	return &User{userRepo: userRepo}
}

func (u *User) LoginUser(userID string, username string) (*entity.DashboardUser, error) {
	err := u.userRepo.UpsertUser(&entity.DashboardUser{
		UserID:          userID,
		Username:        username,
		PermissionLevel: entity.PermissionUpload,
	})
	if err != nil {
		return nil, err
	}
	return u.userRepo.GetUser(userID)
}

func (u *User) GetUser(userID string) (*entity.DashboardUser, error) {
	return u.userRepo.GetUser(userID)
}
