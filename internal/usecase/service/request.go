package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const presignedURLExpiry = time.Hour

var descriptionTemplate = strings.Join([]string{
	"Uploaded for audio whitelisting on Blockate.",
	"",
	"Audio Name: {audioName}",
	"Audio Category: {audioCategory}",
	"",
	"If you are the copyright owner, or someone on behalf of the copyright owner, and wish to remove the following audio, please contact me.",
}, "\n")

type Request struct {
	requestRepo       repo.Request
	uploadedAudioRepo repo.UploadedAudio
	storage           repo.BlobStorage
	pool              usecase.CredentialPool
	roblox            usecase.RobloxClient
	eventRepo         repo.NotificationEventRepository
	tempDir           string
}

func NewRequest(
	requestRepo repo.Request,
	uploadedAudioRepo repo.UploadedAudio,
	storage repo.BlobStorage,
	pool usecase.CredentialPool,
	roblox usecase.RobloxClient,
	eventRepo repo.NotificationEventRepository,
	tempDir string,
) usecase.Request {
	return &Request{
		requestRepo:       requestRepo,
		uploadedAudioRepo: uploadedAudioRepo,
		storage:           storage,
		pool:              pool,
		roblox:            roblox,
		eventRepo:         eventRepo,
		tempDir:           tempDir,
	}
}

func (r *Request) GetRequests(ctx context.Context) ([]*entity.Request, error) {
	requests, err := r.requestRepo.GetRequests()
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		fileURL, err := r.storage.PresignedURL(ctx, request.FilePath, presignedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s: %w", request.FilePath, err)
		}
		request.FileURL = fileURL
	}
	return requests, nil
}

// Accept публикует аудио заявки на платформе. Порядок шагов фиксирован:
// заявка остаётся нетронутой при любой ошибке до записи uploaded_audio,
// поэтому принятие можно безопасно повторить с тем же requestID.
// Частичный отказ после создания ассета (ассет на платформе есть, локальной
// записи нет) не компенсируется.
func (r *Request) Accept(ctx context.Context, requestID string) (int64, error) {
	request, err := r.requestRepo.GetRequest(requestID)
	if err != nil {
		return 0, err
	}

	credential, err := r.pool.AcquireUsableCredential(ctx)
	if err != nil {
		return 0, err
	}

	category, name, ok := entity.ParseAudioFileName(request.FileName)
	if !ok {
		return 0, usecase.ErrInvalidFileName
	}

	raw, err := r.storage.Download(ctx, request.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to download request file: %w", err)
	}
	detected := mimetype.Detect(raw)
	if detected == nil || detected.String() == "application/octet-stream" {
		return 0, usecase.ErrMimeDetectionFailed
	}

	// Файл выкладывается во временный каталог для SDK-вызова платформы
	// и удаляется на любом исходе
	stagedPath := filepath.Join(r.tempDir, uuid.New().String())
	if err := os.MkdirAll(r.tempDir, 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(stagedPath, raw, 0o644); err != nil {
		return 0, err
	}
	defer func() {
		if err := os.Remove(stagedPath); err != nil {
			log.Errorf("failed to remove staged file %s: %v", stagedPath, err)
		}
	}()

	description := strings.NewReplacer("{audioName}", name, "{audioCategory}", category).Replace(descriptionTemplate)
	assetID, err := r.roblox.CreateAudioAsset(ctx, credential, &entity.AssetUpload{
		FileName:    request.FileName,
		DisplayName: name,
		Description: description,
		ContentType: detected.String(),
		FilePath:    stagedPath,
	})
	if err != nil {
		return 0, err
	}

	// Отказ в выдаче прав фиксируется, но не прерывает конвейер
	granted := true
	if err := r.roblox.GrantUsePermission(ctx, credential, assetID); err != nil {
		log.Errorf("failed to grant use permission for asset %d: %v", assetID, err)
		granted = false
	}

	uploadedAudio := &entity.UploadedAudio{
		ID:                    assetID,
		Name:                  name,
		Category:              category,
		GrantedUsePermissions: granted,
		RequesterUserID:       request.UserID,
		UploaderUserID:        credential.Secret.UserID,
	}
	if err := r.uploadedAudioRepo.AddUploadedAudio(uploadedAudio); err != nil {
		return 0, fmt.Errorf("asset %d created but failed to persist uploaded audio: %w", assetID, err)
	}

	r.publishEvent(ctx, entity.NewAcceptNotification(request.UserID, uploadedAudio))

	if err := r.deleteRequest(ctx, request); err != nil {
		return 0, err
	}
	return assetID, nil
}

func (r *Request) Reject(ctx context.Context, requestID string, reason string) error {
	request, err := r.requestRepo.GetRequest(requestID)
	if err != nil {
		return err
	}
	if err := r.deleteRequest(ctx, request); err != nil {
		return err
	}

	// Для уведомления имя разбирается по тому же шаблону; если заявка попала
	// в базу с неразбираемым именем, показываем имя файла как есть
	category, name, ok := entity.ParseAudioFileName(request.FileName)
	if !ok {
		category, name = "", request.FileName
	}
	r.publishEvent(ctx, entity.NewRejectNotification(request.UserID, name, category, reason))
	return nil
}

func (r *Request) deleteRequest(ctx context.Context, request *entity.Request) error {
	if err := r.requestRepo.DeleteRequest(request.ID); err != nil {
		return fmt.Errorf("failed to delete request %s: %w", request.ID, err)
	}
	if err := r.storage.Delete(ctx, request.FilePath); err != nil {
		return fmt.Errorf("failed to delete request blob %s: %w", request.FilePath, err)
	}
	return nil
}

// publishEvent отправляет уведомление без гарантии доставки: ошибка публикации
// логируется и не влияет на результат операции.
func (r *Request) publishEvent(ctx context.Context, event *entity.NotificationEvent) {
	if err := r.eventRepo.PublishNotificationEvent(ctx, event); err != nil {
		log.Errorf("failed to publish %s event for user %s: %v", event.Type, event.UserID, err)
	}
}
