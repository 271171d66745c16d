package entity

import "time"

// Request — ожидающая модерации заявка на вайтлист аудио.
// Хранится до тех пор, пока модератор не примет или не отклонит её.
type Request struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	FileName     string    `json:"file_name" db:"file_name"`
	FilePath     string    `json:"file_path" db:"file_path"`
	FullFilePath string    `json:"full_file_path" db:"full_file_path"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	// FileURL — временная подписанная ссылка на файл, заполняется при выдаче списка
	FileURL string `json:"file_url,omitempty" db:"-"`
}
