package repo

import "audiodb-backend/internal/entity"

type Credential interface {
	// GetCredentials возвращает расшифрованные секреты всех бот-аккаунтов
	// в порядке их добавления в хранилище
	GetCredentials() ([]*entity.Credential, error)
}
