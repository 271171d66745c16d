package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Upload struct {
	uploadUseCase usecase.Upload
	authManager   *utils.AuthManager
}

func NewUpload(uploadUseCase usecase.Upload, authManager *utils.AuthManager) *Upload {
	return &Upload{
		uploadUseCase: uploadUseCase,
		authManager:   authManager,
	}
}

func (u *Upload) Configure(server *echo.Group) {
	server.POST("", u.UploadChunk)
}

// UploadChunk принимает один фрагмент файла из multipart-формы.
// Поля: chunk, fileName, chunkIndex, totalChunks, uploadId.
func (u *Upload) UploadChunk(c echo.Context) error {
	user, err := u.authManager.RequireUser(c, entity.PermissionUpload)
	if err != nil {
		return authErrorResponse(c, err)
	}

	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":  "invalid_upload_data",
			"error": "Invalid upload data",
		})
	}
	chunkIndex, indexErr := strconv.Atoi(c.FormValue("chunkIndex"))
	totalChunks, totalErr := strconv.Atoi(c.FormValue("totalChunks"))
	fileName := c.FormValue("fileName")
	uploadID := c.FormValue("uploadId")
	if indexErr != nil || totalErr != nil || fileName == "" || uploadID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":  "invalid_upload_data",
			"error": "Invalid upload data",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read chunk"})
	}
	defer func() { _ = file.Close() }()
	raw, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read chunk"})
	}

	result, err := u.uploadUseCase.ReceiveChunk(c.Request().Context(), user.UserID, &entity.AudioChunk{
		Raw:         raw,
		FileName:    fileName,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
		UploadID:    uploadID,
	})
	if err != nil {
		return uploadErrorResponse(c, err)
	}

	if result.AssemblyDone {
		return c.JSON(http.StatusCreated, echo.Map{"message": "File uploaded successfully"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Chunk uploaded successfully"})
}

func uploadErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidUploadData):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "invalid_upload_data", "error": "Invalid upload data"})
	case errors.Is(err, usecase.ErrMimeDetectionFailed):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "file_type_detection_failed", "error": "Unable to detect MIME type"})
	case errors.Is(err, usecase.ErrUnsupportedFileType):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "invalid_file_type", "error": "File type not allowed"})
	case errors.Is(err, usecase.ErrInvalidFileName):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "invalid_file_name", "error": "Invalid file name"})
	case errors.Is(err, usecase.ErrFileTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "file_too_large", "error": "File size exceeds maximum allowed size"})
	case errors.Is(err, usecase.ErrDurationExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"code": "duration_exceeded", "error": "Audio duration exceeds maximum allowed duration"})
	default:
		c.Logger().Errorf("Error processing upload: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"errors": []echo.Map{{"message": "Failed to process upload."}}})
	}
}

// authErrorResponse — единый ответ на ошибки авторизации для всех хендлеров.
func authErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, utils.NewAPIErrorResponse("Unauthorized", "unauthorized"))
	case errors.Is(err, utils.ErrForbidden):
		return c.JSON(http.StatusForbidden, utils.NewAPIErrorResponse("Insufficient permissions", "forbidden"))
	default:
		c.Logger().Errorf("auth check failed: %v", err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
	}
}
