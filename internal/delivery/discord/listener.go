package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/bwmarrin/discordgo"
	"github.com/labstack/gommon/log"
)

// События, которые бот пересылает пользователям личными сообщениями.
var relayedEvents = map[entity.NotificationEventType]struct{}{
	entity.AudioRequestAccepted:   {},
	entity.AudioRequestRejected:   {},
	entity.AudioRequestsModerated: {},
}

// EventListener пересылает события из шины уведомлений личными сообщениями
// в Discord и обслуживает команду /checkaudio. Доставка best-effort:
// неудачная отправка логируется и не повторяется.
type EventListener struct {
	session   *discordgo.Session
	eventRepo repo.NotificationEventRepository
	audio     usecase.Audio
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventListener(botToken string, eventRepo repo.NotificationEventRepository, audio usecase.Audio) (*EventListener, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventListener{
		session:   session,
		eventRepo: eventRepo,
		audio:     audio,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (l *EventListener) StartListener() error {
	l.session.AddHandler(l.handleInteraction)
	if err := l.session.Open(); err != nil {
		return err
	}
	log.Infof("authorized on account %s", l.session.State.User.Username)

	if err := l.registerCommands(); err != nil {
		return err
	}

	events, err := l.eventRepo.SubscribeNotificationEvents(l.ctx)
	if err != nil {
		return err
	}
	go l.relayLoop(events)
	return nil
}

func (l *EventListener) StopListener() {
	l.cancel()
	if err := l.session.Close(); err != nil {
		log.Errorf("failed to close discord session: %v", err)
	}
}

func (l *EventListener) relayLoop(events <-chan *entity.NotificationEvent) {
	for event := range events {
		if _, ok := relayedEvents[event.Type]; !ok {
			continue
		}
		l.sendDirectMessage(event)
	}
}

func (l *EventListener) sendDirectMessage(event *entity.NotificationEvent) {
	channel, err := l.session.UserChannelCreate(event.UserID)
	if err != nil {
		log.Errorf("failed to open DM channel for %s: %v", event.UserID, err)
		return
	}
	message := &discordgo.MessageSend{Embeds: toDiscordEmbeds(event.Message.Embeds)}
	if event.Message.Content != nil {
		message.Content = *event.Message.Content
	}
	if _, err := l.session.ChannelMessageSendComplex(channel.ID, message); err != nil {
		log.Errorf("failed to send message to %s: %v", event.UserID, err)
	}
}

func toDiscordEmbeds(embeds []entity.Embed) []*discordgo.MessageEmbed {
	result := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, embed := range embeds {
		fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
		for _, field := range embed.Fields {
			fields = append(fields, &discordgo.MessageEmbedField{Name: field.Name, Value: field.Value})
		}
		result = append(result, &discordgo.MessageEmbed{
			Title:       embed.Title,
			Description: embed.Description,
			Color:       embed.Color,
			Fields:      fields,
		})
	}
	return result
}

func (l *EventListener) registerCommands() error {
	_, err := l.session.ApplicationCommandCreate(l.session.State.User.ID, "", &discordgo.ApplicationCommand{
		Name:        "checkaudio",
		Description: "Check if an audio is whitelisted",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "id",
				Description: "Audio asset ID",
				Required:    true,
			},
		},
	})
	return err
}

func (l *EventListener) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || i.ApplicationCommandData().Name != "checkaudio" {
		return
	}

	reply := l.checkAudioReply(i.ApplicationCommandData().Options[0].StringValue())
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	})
	if err != nil {
		log.Errorf("failed to respond to checkaudio: %v", err)
	}
}

func (l *EventListener) checkAudioReply(rawID string) string {
	audioID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "That doesn't look like an audio ID."
	}
	audio, err := l.audio.GetAudio(audioID)
	if err != nil {
		if errors.Is(err, repo.ErrAudioNotFound) {
			return fmt.Sprintf("Audio `%d` is not whitelisted.", audioID)
		}
		log.Errorf("checkaudio lookup failed for %d: %v", audioID, err)
		return "Something went wrong while looking that up."
	}
	return fmt.Sprintf("Audio `%d` is whitelisted: **%s** (category: %s).", audio.ID, audio.Name, audio.Category)
}
