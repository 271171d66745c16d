package repo

import (
	"errors"

	"audiodb-backend/internal/entity"
)

type Audio interface {
	// AddAudio добавляет запись в вайтлист
	AddAudio(audio *entity.WhitelistAudio) error
	// AddAudios добавляет несколько записей в вайтлист одной транзакцией
	AddAudios(audios []*entity.WhitelistAudio) error
	// GetAudio возвращает запись вайтлиста по ID ассета
	GetAudio(audioID int64) (*entity.WhitelistAudio, error)
	// UpdateAudio обновляет имя/категорию записи вайтлиста
	UpdateAudio(audio *entity.WhitelistAudio) error
	// UpdateAudios обновляет несколько записей одной транзакцией
	UpdateAudios(audios []*entity.WhitelistAudio) error
	// DeleteAudio удаляет запись вайтлиста
	DeleteAudio(audioID int64) error
	// DeleteAudios удаляет несколько записей одной транзакцией
	DeleteAudios(audioIDs []int64) error
	// SearchAudios возвращает страницу записей по ключевому слову и фильтрам
	// вместе с общим количеством совпадений
	SearchAudios(filter *entity.AudioSearchFilter) ([]*entity.WhitelistAudio, int, error)
}

type UploadedAudio interface {
	// AddUploadedAudio сохраняет запись о загруженном на платформу аудио
	AddUploadedAudio(audio *entity.UploadedAudio) error
	// GetModerationQueue возвращает аудио, ожидающие решения модерации платформы
	GetModerationQueue() ([]*entity.UploadedAudio, error)
	// SetModerationStatus снимает аудио с очереди модерации и выставляет итог
	SetModerationStatus(audioIDs []int64, isModerated bool) error
}

var (
	ErrAudioNotFound      = errors.New("audio not found")
	ErrAudioAlreadyExists = errors.New("audio already exists")
)
