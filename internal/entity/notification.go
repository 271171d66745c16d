package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	acceptEmbedColor    = 3901635
	rejectEmbedColor    = 10038818
	moderatedEmbedColor = 16763981
)

// NewAcceptNotification собирает уведомление о принятой заявке.
func NewAcceptNotification(userID string, audio *UploadedAudio) *NotificationEvent {
	fields := []EmbedField{}
	if audio.ID != 0 {
		fields = append(fields, EmbedField{Name: "Audio ID", Value: strconv.FormatInt(audio.ID, 10)})
	}
	if audio.Name != "" {
		fields = append(fields, EmbedField{Name: "Audio Name", Value: audio.Name})
	}
	if audio.Category != "" {
		fields = append(fields, EmbedField{Name: "Audio Category", Value: audio.Category})
	}
	return newNotification(AudioRequestAccepted, userID, Embed{
		Title: "ℹ️ Request Accepted",
		Description: strings.Join([]string{
			"Your audio whitelist request was accepted and is now in the moderation queue.",
			"You will receive a notification if the audio was whitelisted/moderated.",
		}, "\n"),
		Color:  acceptEmbedColor,
		Fields: fields,
	})
}

// NewRejectNotification собирает уведомление об отклонённой заявке.
// Поле Reason добавляется только если причина указана модератором.
func NewRejectNotification(userID string, name string, category string, rejectReason string) *NotificationEvent {
	fields := []EmbedField{}
	if rejectReason != "" {
		fields = append(fields, EmbedField{Name: "Reason", Value: rejectReason})
	}
	fields = append(fields,
		EmbedField{Name: "Audio Name", Value: name},
		EmbedField{Name: "Audio Category", Value: category},
	)
	return newNotification(AudioRequestRejected, userID, Embed{
		Title:       "❌ Request Denied",
		Description: "Your audio whitelist request was denied.",
		Color:       rejectEmbedColor,
		Fields:      fields,
	})
}

// NewModerationNotification собирает уведомление о том, что часть загруженных
// аудио была снята модерацией платформы.
func NewModerationNotification(userID string, audios []*UploadedAudio) *NotificationEvent {
	lines := make([]string, 0, len(audios))
	for _, audio := range audios {
		lines = append(lines, "- "+audio.Category+" - "+audio.Name)
	}
	return newNotification(AudioRequestsModerated, userID, Embed{
		Title: ":warning: Some of your requested audios were moderated",
		Description: "We've automatically detected that the following audio you requested for whitelisting earlier " +
			"has been removed by **roblox moderation**.\n\nThe following is a list of audios that were moderated.",
		Color: moderatedEmbedColor,
		Fields: []EmbedField{
			{Name: "Moderated audios", Value: strings.Join(lines, "\n")},
		},
	})
}

func newNotification(eventType NotificationEventType, userID string, embed Embed) *NotificationEvent {
	return &NotificationEvent{
		EventID: uuid.New().String(),
		Type:    eventType,
		UserID:  userID,
		Message: NotificationMessage{
			Content:     nil,
			Embeds:      []Embed{embed},
			Attachments: []string{},
		},
		OccurredAt: time.Now(),
	}
}
