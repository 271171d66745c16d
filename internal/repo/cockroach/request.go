package cockroach

import (
	"database/sql"
	"errors"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	"github.com/jmoiron/sqlx"
)

type Request struct {
	db *sqlx.DB
}

func NewRequest(db *sqlx.DB) repo.Request {
	return &Request{db: db}
}

func (r *Request) AddRequest(request *entity.Request) (string, error) {
	var requestID string
	query := `
		INSERT INTO request (user_id, file_name, file_path, full_file_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(query, request.UserID, request.FileName, request.FilePath, request.FullFilePath).Scan(&requestID)
	if err != nil {
		return "", err
	}
	return requestID, nil
}

func (r *Request) GetRequest(requestID string) (*entity.Request, error) {
	request := &entity.Request{}
	query := `SELECT id, user_id, file_name, file_path, full_file_path, created_at FROM request WHERE id = $1`
	err := r.db.Get(request, query, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

func (r *Request) GetRequests() ([]*entity.Request, error) {
	var requests []*entity.Request
	query := `SELECT id, user_id, file_name, file_path, full_file_path, created_at FROM request ORDER BY created_at`
	err := r.db.Select(&requests, query)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *Request) DeleteRequest(requestID string) error {
	result, err := r.db.Exec(`DELETE FROM request WHERE id = $1`, requestID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo.ErrRequestNotFound
	}
	return nil
}
