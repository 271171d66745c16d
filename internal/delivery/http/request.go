package http

import (
	"errors"
	"net/http"

	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Request struct {
	requestUseCase usecase.Request
	authManager    *utils.AuthManager
}

func NewRequest(requestUseCase usecase.Request, authManager *utils.AuthManager) *Request {
	return &Request{
		requestUseCase: requestUseCase,
		authManager:    authManager,
	}
}

func (r *Request) Configure(server *echo.Group) {
	server.GET("", r.GetRequests)
	server.POST("/:requestId", r.ResolveRequest)
}

// GetRequests возвращает ожидающие заявки с временными ссылками на файлы.
func (r *Request) GetRequests(c echo.Context) error {
	if _, err := r.authManager.RequireUser(c, entity.PermissionModerator); err != nil {
		return authErrorResponse(c, err)
	}

	requests, err := r.requestUseCase.GetRequests(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("failed to list requests: %v", err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse(err.Error(), "unknown_error"))
	}
	if len(requests) == 0 {
		return c.JSON(http.StatusNotFound, utils.NewAPIErrorResponse("No requests found", "no_requests_found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": requests})
}

type resolveRequestBody struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// ResolveRequest обрабатывает решение модератора: accept или reject.
func (r *Request) ResolveRequest(c echo.Context) error {
	if _, err := r.authManager.RequireUser(c, entity.PermissionModerator); err != nil {
		return authErrorResponse(c, err)
	}

	body := resolveRequestBody{}
	if err := utils.ReadJSON(c, &body); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}

	requestID := c.Param("requestId")
	switch body.Action {
	case "accept":
		return r.acceptRequest(c, requestID)
	case "reject":
		return r.rejectRequest(c, requestID, body.Reason)
	default:
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid action", "invalid_action"))
	}
}

func (r *Request) acceptRequest(c echo.Context, requestID string) error {
	_, err := r.requestUseCase.Accept(c.Request().Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, utils.NewAPIErrorResponse("Request not found", "request_not_found"))
		case errors.Is(err, usecase.ErrNoBotsAvailable):
			return c.JSON(http.StatusServiceUnavailable, utils.NewAPIErrorResponse("No bots are available to handle this request", "no_bots_available"))
		case errors.Is(err, usecase.ErrInvalidFileName):
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid file name", "invalid_file_name"))
		case errors.Is(err, usecase.ErrMimeDetectionFailed):
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Unable to detect MIME type", "file_type_detection_failed"))
		case errors.Is(err, usecase.ErrAudioMetadataModerated):
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Audio metadata was moderated", "audio_metadata_moderated"))
		case errors.Is(err, usecase.ErrRateLimited):
			return c.JSON(http.StatusServiceUnavailable, utils.NewAPIErrorResponse("Platform rate limit reached", "rate_limited"))
		default:
			c.Logger().Errorf("failed to accept request %s: %v", requestID, err)
			return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (r *Request) rejectRequest(c echo.Context, requestID string, reason string) error {
	err := r.requestUseCase.Reject(c.Request().Context(), requestID, reason)
	if err != nil {
		if errors.Is(err, repo.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, utils.NewAPIErrorResponse("Request not found", "request_not_found"))
		}
		c.Logger().Errorf("failed to reject request %s: %v", requestID, err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An error occurred while deleting the request data.", "error_processing_request"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
