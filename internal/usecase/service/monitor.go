package service

import (
	"context"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/gommon/log"
)

// AudioMonitor периодически опрашивает платформу о статусе модерации
// загруженных аудио, снимает завершённые с очереди и рассылает уведомления
// о снятых модерацией.
type AudioMonitor struct {
	uploadedAudioRepo repo.UploadedAudio
	pool              *CredentialPool
	roblox            usecase.RobloxClient
	eventRepo         repo.NotificationEventRepository
	checkInterval     time.Duration
}

func NewAudioMonitor(
	uploadedAudioRepo repo.UploadedAudio,
	pool *CredentialPool,
	roblox usecase.RobloxClient,
	eventRepo repo.NotificationEventRepository,
	checkInterval time.Duration,
) *AudioMonitor {
	return &AudioMonitor{
		uploadedAudioRepo: uploadedAudioRepo,
		pool:              pool,
		roblox:            roblox,
		eventRepo:         eventRepo,
		checkInterval:     checkInterval,
	}
}

func (m *AudioMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	log.Infof("audio moderation monitor started, interval %s", m.checkInterval)
	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Infof("audio moderation monitor stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *AudioMonitor) tick(ctx context.Context) {
	queue, err := m.uploadedAudioRepo.GetModerationQueue()
	if err != nil {
		log.Errorf("failed to load moderation queue: %v", err)
		return
	}
	if len(queue) == 0 {
		return
	}

	credentials, err := m.pool.Credentials(ctx)
	if err != nil {
		log.Errorf("failed to load credentials: %v", err)
		return
	}
	credentialsByUserID := make(map[string]*entity.Credential, len(credentials))
	for _, credential := range credentials {
		credentialsByUserID[credential.Secret.UserID] = credential
	}

	// Статусы можно спрашивать только от имени загрузившего бот-аккаунта,
	// поэтому очередь группируется по загрузчику
	byUploader := make(map[string][]*entity.UploadedAudio)
	for _, audio := range queue {
		byUploader[audio.UploaderUserID] = append(byUploader[audio.UploaderUserID], audio)
	}

	for uploaderUserID, audios := range byUploader {
		credential, ok := credentialsByUserID[uploaderUserID]
		if !ok {
			log.Warnf("no credential for uploader %s, skipping %d audios", uploaderUserID, len(audios))
			continue
		}
		m.checkAudios(ctx, credential, audios)
	}
}

func (m *AudioMonitor) checkAudios(ctx context.Context, credential *entity.Credential, audios []*entity.UploadedAudio) {
	log.Infof("checking %d audios for %s (%s)", len(audios), credential.Description, credential.Secret.UserID)

	assetIDs := make([]int64, 0, len(audios))
	audiosByID := make(map[int64]*entity.UploadedAudio, len(audios))
	for _, audio := range audios {
		assetIDs = append(assetIDs, audio.ID)
		audiosByID[audio.ID] = audio
	}

	statuses, err := m.roblox.GetAudioStatuses(ctx, credential, assetIDs)
	if err != nil {
		log.Errorf("failed to fetch audio statuses for %s: %v", credential.Secret.UserID, err)
		return
	}

	var moderated, approved []*entity.UploadedAudio
	for _, status := range statuses {
		audio, ok := audiosByID[status.ID]
		if !ok || status.ReviewStatus != entity.ReviewStatusFinished {
			continue
		}
		if status.IsModerated {
			moderated = append(moderated, audio)
		} else {
			approved = append(approved, audio)
		}
	}

	m.finishModeration(ctx, approved, false)
	m.finishModeration(ctx, moderated, true)
}

func (m *AudioMonitor) finishModeration(ctx context.Context, audios []*entity.UploadedAudio, isModerated bool) {
	if len(audios) == 0 {
		return
	}
	assetIDs := make([]int64, 0, len(audios))
	for _, audio := range audios {
		assetIDs = append(assetIDs, audio.ID)
	}
	if err := m.uploadedAudioRepo.SetModerationStatus(assetIDs, isModerated); err != nil {
		log.Errorf("failed to update moderation status for %d audios: %v", len(audios), err)
	}
	if !isModerated {
		return
	}

	// Уведомление о снятых аудио получает каждый автор заявки отдельно
	byRequester := make(map[string][]*entity.UploadedAudio)
	for _, audio := range audios {
		byRequester[audio.RequesterUserID] = append(byRequester[audio.RequesterUserID], audio)
	}
	for requesterUserID, requesterAudios := range byRequester {
		event := entity.NewModerationNotification(requesterUserID, requesterAudios)
		if err := m.eventRepo.PublishNotificationEvent(ctx, event); err != nil {
			log.Errorf("failed to publish moderation event for user %s: %v", requesterUserID, err)
		}
	}
}
