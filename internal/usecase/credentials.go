package usecase

import (
	"context"

	"audiodb-backend/internal/entity"
)

type CredentialPool interface {
	// AcquireUsableCredential возвращает первый бот-аккаунт, способный
	// принять загрузку прямо сейчас, либо ErrNoBotsAvailable
	AcquireUsableCredential(ctx context.Context) (*entity.Credential, error)
}

type QuotaProber interface {
	// ProbeQuota опрашивает платформу о квоте загрузок бот-аккаунта.
	// Сетевые ошибки возвращаются как error и трактуются пулом как ProbeFailed.
	ProbeQuota(ctx context.Context, credential *entity.Credential) (*entity.QuotaProbe, error)
}
