package http

import (
	"errors"
	"net/http"
	"strconv"

	"audiodb-backend/internal/delivery/http/utils"
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Audio struct {
	audioUseCase usecase.Audio
	authManager  *utils.AuthManager
}

func NewAudio(audioUseCase usecase.Audio, authManager *utils.AuthManager) *Audio {
	return &Audio{
		audioUseCase: audioUseCase,
		authManager:  authManager,
	}
}

// Configure настраивает маршруты: поиск доступен всем пользователям дашборда,
// правка вайтлиста — только администраторам.
func (a *Audio) Configure(searchGroup *echo.Group, dashboardGroup *echo.Group) {
	searchGroup.POST("/search", a.SearchAudios)
	dashboardGroup.POST("", a.AddAudio)
	dashboardGroup.PATCH("/:audioId", a.UpdateAudio)
	dashboardGroup.DELETE("/:audioId", a.DeleteAudio)
	dashboardGroup.POST("/batch", a.AddAudios)
	dashboardGroup.PATCH("/batch", a.UpdateAudios)
	dashboardGroup.DELETE("/batch", a.DeleteAudios)
}

// SearchAudios ищет по вайтлисту с пагинацией и фильтрами по полям.
func (a *Audio) SearchAudios(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionUpload); err != nil {
		return authErrorResponse(c, err)
	}

	filter := entity.AudioSearchFilter{}
	if err := utils.ReadJSON(c, &filter); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		filter.Keyword = keyword
	}
	if pageParam := c.QueryParam("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse(`Invalid "page" query parameter`, "invalid_page"))
		}
		filter.Page = page
	}

	audios, total, err := a.audioUseCase.SearchAudios(&filter)
	if err != nil {
		c.Logger().Errorf("audio search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": audios, "total": total})
}

func (a *Audio) AddAudio(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	audio := entity.WhitelistAudio{}
	if err := utils.ReadJSON(c, &audio); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	if audio.ID == 0 || audio.Name == "" || audio.Category == "" {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("id, name and category are required", "invalid_audio"))
	}

	if err := a.audioUseCase.AddAudio(&audio); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func (a *Audio) AddAudios(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	var audios []*entity.WhitelistAudio
	if err := utils.ReadJSON(c, &audios); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	for _, audio := range audios {
		if audio.ID == 0 || audio.Name == "" || audio.Category == "" {
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("id, name and category are required", "invalid_audio"))
		}
	}

	if err := a.audioUseCase.AddAudios(audios); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func (a *Audio) UpdateAudio(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	audioID, err := strconv.ParseInt(c.Param("audioId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid audio id", "invalid_audio_id"))
	}
	audio := entity.WhitelistAudio{}
	if err := utils.ReadJSON(c, &audio); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	audio.ID = audioID

	if err := a.audioUseCase.UpdateAudio(&audio); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func (a *Audio) UpdateAudios(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	var audios []*entity.WhitelistAudio
	if err := utils.ReadJSON(c, &audios); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	for _, audio := range audios {
		if audio.ID == 0 || audio.Name == "" || audio.Category == "" {
			return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("id, name and category are required", "invalid_audio"))
		}
	}

	if err := a.audioUseCase.UpdateAudios(audios); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func (a *Audio) DeleteAudio(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	audioID, err := strconv.ParseInt(c.Param("audioId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid audio id", "invalid_audio_id"))
	}
	if err := a.audioUseCase.DeleteAudio(audioID); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func (a *Audio) DeleteAudios(c echo.Context) error {
	if _, err := a.authManager.RequireUser(c, entity.PermissionAdmin); err != nil {
		return authErrorResponse(c, err)
	}

	var audioIDs []int64
	if err := utils.ReadJSON(c, &audioIDs); err != nil {
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Invalid JSON", "invalid_json"))
	}
	if err := a.audioUseCase.DeleteAudios(audioIDs); err != nil {
		return audioErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": nil})
}

func audioErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repo.ErrAudioAlreadyExists):
		return c.JSON(http.StatusBadRequest, utils.NewAPIErrorResponse("Audio already exists", "audio_already_exists"))
	case errors.Is(err, repo.ErrAudioNotFound):
		return c.JSON(http.StatusNotFound, utils.NewAPIErrorResponse("Audio not found", "audio_not_found"))
	default:
		c.Logger().Errorf("audio operation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, utils.NewAPIErrorResponse("An unexpected error occurred", "unknown_error"))
	}
}
