package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/pkg/retry"

	"github.com/labstack/gommon/log"
)

const (
	friendshipWaitRetries = 8
	friendshipWaitDelay   = time.Second
)

// csrfToken получает X-CSRF-TOKEN: платформа выдаёт его в ответ на
// неподписанный запрос логина.
func (c *Client) csrfToken(ctx context.Context, credential *entity.Credential) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+"/v2/login", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", cookieHeader(credential))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	token := resp.Header.Get("x-csrf-token")
	if token == "" {
		return "", errors.New("did not receive x-csrf-token")
	}
	return token, nil
}

func (c *Client) isFriendsWithWhitelistBot(ctx context.Context, credential *entity.Credential) (bool, error) {
	url := c.friendsBaseURL + "/v1/users/" + credential.Secret.UserID + "/friends"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Cookie", cookieHeader(credential))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("friends list request failed with status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, err
	}
	for _, friend := range parsed.Data {
		if friend.ID == c.whitelistBotUserID {
			return true, nil
		}
	}
	return false, nil
}

// ensureFriendship добивается дружбы бот-аккаунта с аккаунтом вайтлист-бота:
// без неё выдача прав на ассет невозможна. Заявка в друзья принимается
// вайтлист-ботом автоматически, ожидание ограничено.
func (c *Client) ensureFriendship(ctx context.Context, credential *entity.Credential, csrf string) error {
	friends, err := c.isFriendsWithWhitelistBot(ctx, credential)
	if err != nil {
		return err
	}
	if friends {
		return nil
	}

	log.Infof("sending friend request to whitelist bot from %s", credential.Secret.UserID)
	url := fmt.Sprintf("%s/v1/users/%d/request-friendship", c.friendsBaseURL, c.whitelistBotUserID)
	body := bytes.NewBufferString(`{"friendshipOriginSourceType":"UserProfile"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", cookieHeader(credential))
	req.Header.Set("x-csrf-token", csrf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("friend request failed with status %d: %s", resp.StatusCode, respBody)
	}

	return retry.DoWithContext(ctx, friendshipWaitRetries, friendshipWaitDelay, func() error {
		friends, err := c.isFriendsWithWhitelistBot(ctx, credential)
		if err != nil {
			return err
		}
		if !friends {
			return errors.New("waiting for whitelist bot to accept friend request")
		}
		return nil
	})
}

// GrantUsePermission выдаёт аккаунту вайтлист-бота право Use на ассет.
func (c *Client) GrantUsePermission(ctx context.Context, credential *entity.Credential, assetID int64) error {
	csrf, err := c.csrfToken(ctx, credential)
	if err != nil {
		return err
	}
	if err := c.ensureFriendship(ctx, credential, csrf); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"requests": []map[string]any{
			{
				"action":      "Use",
				"subjectId":   strconv.FormatInt(c.whitelistBotUserID, 10),
				"subjectType": "User",
			},
		},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/asset-permissions-api/v1/assets/%d/permissions", c.apisBaseURL, assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", cookieHeader(credential))
	req.Header.Set("x-csrf-token", csrf)
	req.Header.Set("Content-Type", "application/json-patch+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("permission update failed with status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
