package usecase

import "audiodb-backend/internal/entity"

type Audio interface {
	// AddAudio добавляет запись в вайтлист
	AddAudio(audio *entity.WhitelistAudio) error
	// AddAudios добавляет несколько записей разом
	AddAudios(audios []*entity.WhitelistAudio) error
	// GetAudio возвращает запись вайтлиста по ID ассета
	GetAudio(audioID int64) (*entity.WhitelistAudio, error)
	// UpdateAudio обновляет имя/категорию записи
	UpdateAudio(audio *entity.WhitelistAudio) error
	// UpdateAudios обновляет несколько записей разом
	UpdateAudios(audios []*entity.WhitelistAudio) error
	// DeleteAudio удаляет запись
	DeleteAudio(audioID int64) error
	// DeleteAudios удаляет несколько записей разом
	DeleteAudios(audioIDs []int64) error
	// SearchAudios возвращает страницу вайтлиста и общее число совпадений
	SearchAudios(filter *entity.AudioSearchFilter) ([]*entity.WhitelistAudio, int, error)
}
