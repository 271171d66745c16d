package repo

import (
	"errors"

	"audiodb-backend/internal/entity"
)

type Request interface {
	// AddRequest сохраняет новую заявку и возвращает её ID
	AddRequest(request *entity.Request) (string, error)
	// GetRequest возвращает заявку по ID
	GetRequest(requestID string) (*entity.Request, error)
	// GetRequests возвращает все ожидающие заявки
	GetRequests() ([]*entity.Request, error)
	// DeleteRequest удаляет заявку
	DeleteRequest(requestID string) error
}

var ErrRequestNotFound = errors.New("request not found")
