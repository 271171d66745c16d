package utils

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
)

func ReadJSON(c echo.Context, v any) error {
	err := json.NewDecoder(c.Request().Body).Decode(v)
	if err != nil {
		return err
	}
	return nil
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// APIErrorResponse — формат ответа об ошибке для эндпоинтов модерации:
// {success: false, errors: [{message, code}]}
type APIErrorResponse struct {
	Success bool       `json:"success"`
	Errors  []APIError `json:"errors"`
}

func NewAPIErrorResponse(message string, code string) *APIErrorResponse {
	return &APIErrorResponse{
		Success: false,
		Errors:  []APIError{{Message: message, Code: code}},
	}
}
