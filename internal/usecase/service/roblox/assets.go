package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"
	"audiodb-backend/pkg/retry"
)

const (
	operationPollRetries = 8
	operationPollDelay   = 500 * time.Millisecond
)

type createAssetRequest struct {
	AssetType       string `json:"assetType"`
	DisplayName     string `json:"displayName"`
	Description     string `json:"description"`
	CreationContext struct {
		Creator struct {
			UserID string `json:"userId"`
		} `json:"creator"`
	} `json:"creationContext"`
}

type assetOperation struct {
	Path     string `json:"path"`
	Done     bool   `json:"done"`
	Response struct {
		AssetID string `json:"assetId"`
	} `json:"response"`
}

// CreateAudioAsset публикует аудио через Open Cloud. Создание асинхронное:
// платформа возвращает операцию, которую нужно опрашивать до завершения.
func (c *Client) CreateAudioAsset(ctx context.Context, credential *entity.Credential, asset *entity.AssetUpload) (int64, error) {
	payload := createAssetRequest{
		AssetType:   "Audio",
		DisplayName: asset.DisplayName,
		Description: asset.Description,
	}
	payload.CreationContext.Creator.UserID = credential.Secret.UserID
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(asset.FilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("request", string(payloadJSON)); err != nil {
		return 0, err
	}
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="fileContent"; filename="%s"`, asset.FileName))
	partHeader.Set("Content-Type", asset.ContentType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apisBaseURL+"/assets/v1/assets", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("x-api-key", credential.Secret.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, mapCreateAssetError(resp.StatusCode, respBody)
	}

	var operation assetOperation
	if err := json.Unmarshal(respBody, &operation); err != nil {
		return 0, fmt.Errorf("failed to decode asset operation: %w", err)
	}
	if !operation.Done {
		if err := c.pollOperation(ctx, credential, &operation); err != nil {
			return 0, err
		}
	}
	if operation.Response.AssetID == "" {
		return 0, fmt.Errorf("asset operation finished without asset id")
	}
	return strconv.ParseInt(operation.Response.AssetID, 10, 64)
}

// pollOperation опрашивает операцию создания ассета до её завершения.
func (c *Client) pollOperation(ctx context.Context, credential *entity.Credential, operation *assetOperation) error {
	return retry.DoWithContext(ctx, operationPollRetries, operationPollDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apisBaseURL+"/assets/v1/"+operation.Path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("x-api-key", credential.Secret.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("operation poll failed with status %d: %s", resp.StatusCode, body)
		}
		if err := json.NewDecoder(resp.Body).Decode(operation); err != nil {
			return err
		}
		if !operation.Done {
			return fmt.Errorf("operation %s is not finished yet", operation.Path)
		}
		return nil
	})
}

// mapCreateAssetError переводит известные отказы платформы в доменные ошибки.
func mapCreateAssetError(statusCode int, body []byte) error {
	message := strings.ToLower(string(body))
	switch {
	case strings.Contains(message, "moderated"):
		return fmt.Errorf("%w: %s", usecase.ErrAudioMetadataModerated, body)
	case statusCode == http.StatusTooManyRequests || strings.Contains(message, "toomanyrequests"):
		return fmt.Errorf("%w: %s", usecase.ErrRateLimited, body)
	default:
		return fmt.Errorf("asset creation failed with status %d: %s", statusCode, body)
	}
}
