package usecase

import "errors"

// Ошибки валидации и политики: возвращаются до любых внешних вызовов,
// пользователь может исправить их сам.
var (
	ErrInvalidUploadData   = errors.New("invalid upload data")
	ErrUnsupportedFileType = errors.New("file type not allowed")
	ErrMimeDetectionFailed = errors.New("unable to detect mime type")
	ErrInvalidFileName     = errors.New("invalid file name")
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed size")
	ErrDurationExceeded    = errors.New("audio duration exceeds maximum allowed duration")
)

// Ошибки взаимодействия с внешней платформой.
var (
	// ErrNoBotsAvailable — ни один бот-аккаунт из пула не может принять загрузку
	ErrNoBotsAvailable = errors.New("no bots are available to handle this request")
	// ErrAudioMetadataModerated — платформа отклонила название/описание ассета
	ErrAudioMetadataModerated = errors.New("audio metadata was moderated by the platform")
	// ErrRateLimited — платформа ограничила частоту запросов
	ErrRateLimited = errors.New("rate limited by the platform")
)
