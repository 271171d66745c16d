// Package roblox реализует HTTP-клиент платформы: опрос квот загрузки,
// публикацию аудио через Open Cloud, выдачу прав на ассеты и проверку
// статусов модерации. Все операции выполняются от имени бот-аккаунта
// и требуют его cookie и/или Open Cloud API-ключа.
package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"
)

type Client struct {
	httpClient *http.Client
	// whitelistBotUserID — фиксированный аккаунт, которому выдаются права
	// на каждый загруженный ассет
	whitelistBotUserID int64

	publishBaseURL string
	authBaseURL    string
	apisBaseURL    string
	friendsBaseURL string
	developBaseURL string
}

func NewClient(whitelistBotUserID int64) usecase.RobloxClient {
	return &Client{
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		whitelistBotUserID: whitelistBotUserID,
		publishBaseURL:     "https://publish.roblox.com",
		authBaseURL:        "https://auth.roblox.com",
		apisBaseURL:        "https://apis.roblox.com",
		friendsBaseURL:     "https://friends.roblox.com",
		developBaseURL:     "https://develop.roblox.com",
	}
}

func cookieHeader(credential *entity.Credential) string {
	return ".ROBLOSECURITY=" + credential.Secret.AccountCookie
}

type quotaResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Quotas []struct {
		Usage    int `json:"usage"`
		Capacity int `json:"capacity"`
	} `json:"quotas"`
}

// ProbeQuota спрашивает платформу, сколько аудио-загрузок осталось у бот-аккаунта.
func (c *Client) ProbeQuota(ctx context.Context, credential *entity.Credential) (*entity.QuotaProbe, error) {
	url := c.publishBaseURL + "/v1/asset-quotas?resourceType=RateLimitUpload&assetType=Audio"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", cookieHeader(credential))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return &entity.QuotaProbe{Outcome: entity.ProbeUnauthenticated}, nil
	}

	var parsed quotaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode quota response: %w", err)
	}
	for _, respErr := range parsed.Errors {
		if respErr.Message == "User is moderated" {
			return &entity.QuotaProbe{Outcome: entity.ProbeModerated}, nil
		}
	}
	if len(parsed.Quotas) == 0 {
		return nil, fmt.Errorf("quota response contains no quotas (status %d)", resp.StatusCode)
	}

	probe := &entity.QuotaProbe{
		Usage:    parsed.Quotas[0].Usage,
		Capacity: parsed.Quotas[0].Capacity,
	}
	if probe.Usage < probe.Capacity {
		probe.Outcome = entity.ProbeUsable
	} else {
		probe.Outcome = entity.ProbeAtCapacity
	}
	return probe, nil
}

// GetAudioStatuses возвращает статусы модерации ассетов, загруженных бот-аккаунтом.
func (c *Client) GetAudioStatuses(ctx context.Context, credential *entity.Credential, assetIDs []int64) ([]*entity.AudioStatus, error) {
	ids := ""
	for i, assetID := range assetIDs {
		if i > 0 {
			ids += ","
		}
		ids += fmt.Sprintf("%d", assetID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.developBaseURL+"/v1/assets?assetIds="+ids, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", cookieHeader(credential))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("asset status request failed with status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Data []*entity.AudioStatus `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode asset status response: %w", err)
	}
	return parsed.Data, nil
}
