package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"
	"audiodb-backend/internal/usecase/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialRepo struct {
	credentials []*entity.Credential
	err         error
	calls       int
}

func (f *fakeCredentialRepo) GetCredentials() ([]*entity.Credential, error) {
	f.calls++
	return f.credentials, f.err
}

type fakeQuotaProber struct {
	probes map[string]*entity.QuotaProbe
	errs   map[string]error
	probed []string
}

func (f *fakeQuotaProber) ProbeQuota(_ context.Context, credential *entity.Credential) (*entity.QuotaProbe, error) {
	f.probed = append(f.probed, credential.Secret.UserID)
	if err, ok := f.errs[credential.Secret.UserID]; ok {
		return nil, err
	}
	return f.probes[credential.Secret.UserID], nil
}

func testCredential(userID string) *entity.Credential {
	return &entity.Credential{
		Description: "bot " + userID,
		Secret:      entity.CredentialSecret{APIKey: "key-" + userID, AccountCookie: "cookie-" + userID, UserID: userID},
	}
}

func TestCredentialPool_AcquireUsableCredential_SkipsUnusableBots(t *testing.T) {
	repo := &fakeCredentialRepo{credentials: []*entity.Credential{
		testCredential("1"), testCredential("2"), testCredential("3"), testCredential("4"), testCredential("5"),
	}}
	prober := &fakeQuotaProber{
		probes: map[string]*entity.QuotaProbe{
			"1": {Outcome: entity.ProbeModerated},
			"3": {Outcome: entity.ProbeAtCapacity, Usage: 10, Capacity: 10},
			"4": {Outcome: entity.ProbeUnauthenticated},
			"5": {Outcome: entity.ProbeUsable, Usage: 2, Capacity: 10},
		},
		errs: map[string]error{"2": errors.New("connection refused")},
	}
	pool := service.NewCredentialPool(repo, prober, time.Minute)

	credential, err := pool.AcquireUsableCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5", credential.Secret.UserID)
	// Аккаунты опрашиваются в порядке пула, перебор останавливается на первом пригодном
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, prober.probed)
}

func TestCredentialPool_AcquireUsableCredential_AllExhausted(t *testing.T) {
	repo := &fakeCredentialRepo{credentials: []*entity.Credential{testCredential("1"), testCredential("2")}}
	prober := &fakeQuotaProber{probes: map[string]*entity.QuotaProbe{
		"1": {Outcome: entity.ProbeAtCapacity, Usage: 10, Capacity: 10},
		"2": {Outcome: entity.ProbeModerated},
	}}
	pool := service.NewCredentialPool(repo, prober, time.Minute)

	_, err := pool.AcquireUsableCredential(context.Background())
	assert.ErrorIs(t, err, usecase.ErrNoBotsAvailable)
}

func TestCredentialPool_Credentials_CachesWithinTTL(t *testing.T) {
	repo := &fakeCredentialRepo{credentials: []*entity.Credential{testCredential("1")}}
	pool := service.NewCredentialPool(repo, &fakeQuotaProber{}, time.Minute)

	_, err := pool.Credentials(context.Background())
	require.NoError(t, err)
	_, err = pool.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestCredentialPool_Credentials_RefreshesAfterTTL(t *testing.T) {
	repo := &fakeCredentialRepo{credentials: []*entity.Credential{testCredential("1")}}
	pool := service.NewCredentialPool(repo, &fakeQuotaProber{}, 0)

	_, err := pool.Credentials(context.Background())
	require.NoError(t, err)
	_, err = pool.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCredentialPool_Credentials_PropagatesVaultError(t *testing.T) {
	repo := &fakeCredentialRepo{err: errors.New("vault unavailable")}
	pool := service.NewCredentialPool(repo, &fakeQuotaProber{}, time.Minute)

	_, err := pool.AcquireUsableCredential(context.Background())
	assert.ErrorContains(t, err, "vault unavailable")
}
