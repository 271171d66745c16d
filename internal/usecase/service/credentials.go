package service

import (
	"context"
	"sync"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// CredentialPool кэширует секреты бот-аккаунтов и выбирает аккаунт,
// способный принять загрузку прямо сейчас.
type CredentialPool struct {
	credentialRepo repo.Credential
	prober         usecase.QuotaProber
	cacheTTL       time.Duration

	mu             sync.Mutex
	cached         []*entity.Credential
	cacheExpiresAt time.Time
	// одновременные промахи кэша делят один поход в хранилище
	refreshGroup singleflight.Group
}

func NewCredentialPool(credentialRepo repo.Credential, prober usecase.QuotaProber, cacheTTL time.Duration) *CredentialPool {
	return &CredentialPool{
		credentialRepo: credentialRepo,
		prober:         prober,
		cacheTTL:       cacheTTL,
	}
}

// Credentials возвращает кэшированный список бот-аккаунтов, обновляя его
// по истечении TTL.
func (p *CredentialPool) Credentials(ctx context.Context) ([]*entity.Credential, error) {
	p.mu.Lock()
	if time.Now().Before(p.cacheExpiresAt) {
		cached := p.cached
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	result, err, _ := p.refreshGroup.Do("credentials", func() (any, error) {
		log.Infof("credential cache miss, fetching from vault")
		credentials, err := p.credentialRepo.GetCredentials()
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cached = credentials
		p.cacheExpiresAt = time.Now().Add(p.cacheTTL)
		p.mu.Unlock()
		return credentials, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*entity.Credential), nil
}

// AcquireUsableCredential опрашивает бот-аккаунты в порядке пула и возвращает
// первый, у которого остаётся квота загрузок. Перебор синхронный и ограничен
// размером пула; неудачный опрос одного аккаунта не прерывает перебор.
func (p *CredentialPool) AcquireUsableCredential(ctx context.Context) (*entity.Credential, error) {
	credentials, err := p.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	for _, credential := range credentials {
		probe, err := p.prober.ProbeQuota(ctx, credential)
		if err != nil {
			log.Errorf("quota probe failed for bot %s: %v", credential.Secret.UserID, err)
			continue
		}
		switch probe.Outcome {
		case entity.ProbeUsable:
			log.Infof("bot %s has %d/%d audio uploads remaining",
				credential.Secret.UserID, probe.Capacity-probe.Usage, probe.Capacity)
			return credential, nil
		case entity.ProbeModerated:
			log.Warnf("bot %s has a moderation action, picking another bot", credential.Secret.UserID)
		case entity.ProbeUnauthenticated:
			log.Warnf("bot %s is not authenticated, picking another bot", credential.Secret.UserID)
		case entity.ProbeAtCapacity:
			log.Infof("bot %s is at upload capacity (%d/%d)", credential.Secret.UserID, probe.Usage, probe.Capacity)
		default:
			log.Errorf("quota probe for bot %s returned no verdict", credential.Secret.UserID)
		}
	}
	return nil, usecase.ErrNoBotsAvailable
}
