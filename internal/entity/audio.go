package entity

import "time"

// WhitelistAudio — запись вайтлиста: аудио, которое уже можно использовать на платформе.
type WhitelistAudio struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Category          string    `json:"category" db:"category"`
	WhitelisterName   string    `json:"whitelister_name" db:"whitelister_name"`
	WhitelisterUserID string    `json:"whitelister_user_id" db:"whitelister_user_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// UploadedAudio — аудио, загруженное на платформу через один из бот-аккаунтов.
// Флаги модерации выставляет воркер audio-monitor.
type UploadedAudio struct {
	// ID — идентификатор ассета на платформе
	ID                    int64     `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Category              string    `json:"category" db:"category"`
	GrantedUsePermissions bool      `json:"granted_use_permissions" db:"granted_use_permissions"`
	InModerationQueue     bool      `json:"in_moderation_queue" db:"in_moderation_queue"`
	IsModerated           bool      `json:"is_moderated" db:"is_moderated"`
	RequesterUserID       string    `json:"requester_user_id" db:"requester_user_id"`
	UploaderUserID        string    `json:"uploader_user_id" db:"uploader_user_id"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// AudioStatus — статус проверки ассета на стороне платформы.
type AudioStatus struct {
	ID           int64  `json:"id"`
	ReviewStatus string `json:"reviewStatus"`
	IsModerated  bool   `json:"isModerated"`
}

const ReviewStatusFinished = "Finished"

// AudioFieldFilter — фильтр поиска по одному полю вайтлиста.
type AudioFieldFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AudioSearchFilter — параметры поиска по вайтлисту.
type AudioSearchFilter struct {
	Keyword string `json:"keyword"`
	// FilterType — "and" или "or", способ комбинирования фильтров
	FilterType string             `json:"filter_type"`
	Filters    []AudioFieldFilter `json:"filters"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
}
