package entity

import "time"

type NotificationEventType string

const (
	AudioRequestAccepted   NotificationEventType = "audio_request_accepted"
	AudioRequestRejected   NotificationEventType = "audio_request_rejected"
	AudioRequestsModerated NotificationEventType = "audio_requests_moderated"
)

// NotificationEvent — событие для доставки пользователю личным сообщением.
// Доставка at-most-once: событие публикуется без подтверждения и не повторяется.
type NotificationEvent struct {
	EventID    string                `json:"-" msgpack:"event_id"`
	Type       NotificationEventType `json:"-" msgpack:"type"`
	UserID     string                `json:"userId" msgpack:"user_id"`
	Message    NotificationMessage   `json:"messageData" msgpack:"message_data"`
	OccurredAt time.Time             `json:"-" msgpack:"occurred_at"`
}

// NotificationMessage повторяет формат сообщения мессенджера: текст отсутствует,
// всё содержимое — в embeds.
type NotificationMessage struct {
	Content     *string  `json:"content" msgpack:"content"`
	Embeds      []Embed  `json:"embeds" msgpack:"embeds"`
	Attachments []string `json:"attachments" msgpack:"attachments"`
}

type Embed struct {
	Title       string       `json:"title" msgpack:"title"`
	Description string       `json:"description" msgpack:"description"`
	Color       int          `json:"color" msgpack:"color"`
	Fields      []EmbedField `json:"fields" msgpack:"fields"`
}

type EmbedField struct {
	Name  string `json:"name" msgpack:"name"`
	Value string `json:"value" msgpack:"value"`
}
