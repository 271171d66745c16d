package usecase

import (
	"context"

	"audiodb-backend/internal/entity"
)

// RobloxClient — операции внешней платформы, выполняемые от имени бот-аккаунта.
type RobloxClient interface {
	QuotaProber
	// CreateAudioAsset загружает аудио на платформу и возвращает ID ассета.
	// Отказ платформы по модерации метаданных и по частоте запросов
	// возвращается как ErrAudioMetadataModerated / ErrRateLimited.
	CreateAudioAsset(ctx context.Context, credential *entity.Credential, asset *entity.AssetUpload) (int64, error)
	// GrantUsePermission выдаёт фиксированному аккаунту вайтлист-бота право
	// использовать ассет. При необходимости предварительно устанавливает дружбу.
	GrantUsePermission(ctx context.Context, credential *entity.Credential, assetID int64) error
	// GetAudioStatuses возвращает статусы модерации ассетов
	GetAudioStatuses(ctx context.Context, credential *entity.Credential, assetIDs []int64) ([]*entity.AudioStatus, error)
}
